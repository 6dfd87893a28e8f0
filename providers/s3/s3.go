// Package s3store keeps encrypted file attachments in S3. Content is sealed
// with Cipher.EncryptBuffer before upload, so the bucket only ever holds
// iv || tag || ciphertext blobs.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/carewise/medcrypt"
)

// API is the subset of the S3 client the store uses; narrowed for tests.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// AttachmentStore uploads and downloads encrypted attachment blobs.
type AttachmentStore struct {
	client API
	bucket string
	cipher *medcrypt.Cipher
}

// New creates an AttachmentStore using the default AWS configuration chain.
func New(ctx context.Context, bucket string, cipher *medcrypt.Cipher) (*AttachmentStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", medcrypt.ErrInvalidConfiguration)
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, cipher), nil
}

// NewWithClient creates an AttachmentStore around an existing client.
func NewWithClient(client API, bucket string, cipher *medcrypt.Cipher) *AttachmentStore {
	return &AttachmentStore{client: client, bucket: bucket, cipher: cipher}
}

// Put encrypts data and uploads it under key.
func (a *AttachmentStore) Put(ctx context.Context, key string, data []byte) error {
	blob, err := a.cipher.EncryptBuffer(data)
	if err != nil {
		return err
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(blob),
	})
	if err != nil {
		return fmt.Errorf("failed to upload attachment %q: %w", key, err)
	}
	return nil
}

// Get downloads and decrypts the attachment stored under key. A missing or
// empty object returns empty content, matching DecryptBuffer's contract for
// optional file content.
func (a *AttachmentStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment %q: %w", key, err)
	}
	defer out.Body.Close()

	blob, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %q: %w", key, err)
	}
	return a.cipher.DecryptBuffer(blob)
}

// Delete removes the attachment stored under key.
func (a *AttachmentStore) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete attachment %q: %w", key, err)
	}
	return nil
}
