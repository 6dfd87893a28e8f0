package s3store_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewise/medcrypt"
	s3store "github.com/carewise/medcrypt/providers/s3"
)

const testSecret = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// fakeS3 keeps objects in memory, mimicking just enough of the S3 API.
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, &noSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type noSuchKey struct{}

func (e *noSuchKey) Error() string { return "NoSuchKey" }

func newTestCipher(t *testing.T) *medcrypt.Cipher {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cipher, err := medcrypt.New(medcrypt.Config{KeySecret: testSecret}, medcrypt.WithLogger(logger))
	require.NoError(t, err)
	return cipher
}

func TestAttachmentRoundTrip(t *testing.T) {
	cipher := newTestCipher(t)
	fake := newFakeS3()
	attachments := s3store.NewWithClient(fake, "records-bucket", cipher)
	ctx := context.Background()

	content := []byte("%PDF-1.7 blood panel results")
	require.NoError(t, attachments.Put(ctx, "records/u-1/lab.pdf", content))

	// The bucket must only ever hold ciphertext.
	stored := fake.objects["records/u-1/lab.pdf"]
	require.NotEmpty(t, stored)
	assert.NotContains(t, string(stored), "blood panel")

	got, err := attachments.Get(ctx, "records/u-1/lab.pdf")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestAttachmentDelete(t *testing.T) {
	cipher := newTestCipher(t)
	fake := newFakeS3()
	attachments := s3store.NewWithClient(fake, "records-bucket", cipher)
	ctx := context.Background()

	require.NoError(t, attachments.Put(ctx, "k", []byte("content")))
	require.NoError(t, attachments.Delete(ctx, "k"))

	_, err := attachments.Get(ctx, "k")
	assert.Error(t, err)
}

func TestAttachmentGetTamperedObject(t *testing.T) {
	cipher := newTestCipher(t)
	fake := newFakeS3()
	attachments := s3store.NewWithClient(fake, "records-bucket", cipher)
	ctx := context.Background()

	require.NoError(t, attachments.Put(ctx, "k", []byte("original")))
	blob := fake.objects["k"]
	blob[len(blob)-1] ^= 0x01

	_, err := attachments.Get(ctx, "k")
	require.Error(t, err)
	assert.True(t, medcrypt.IsAuthError(err))
}
