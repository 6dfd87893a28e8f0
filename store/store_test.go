package store_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewise/medcrypt"
	"github.com/carewise/medcrypt/store"
)

const testSecret = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestStore(t *testing.T) (*store.Store, *medcrypt.Cipher) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cipher, err := medcrypt.New(medcrypt.Config{KeySecret: testSecret}, medcrypt.WithLogger(logger))
	require.NoError(t, err)

	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, cipher
}

func TestSaveAndFindAccount(t *testing.T) {
	db, cipher := newTestStore(t)
	ctx := context.Background()

	secrets, err := cipher.BuildUserSecrets(medcrypt.UserFields{
		FirstName: "Alice", LastName: "Doe", Email: "Alice@Ex.com",
	})
	require.NoError(t, err)
	require.NoError(t, db.SaveAccount(ctx, store.KindUser, "u-1", secrets))

	// Login path: hash the typed identifier, look the row up, hydrate.
	row, err := db.FindAccountByEmailHash(ctx, store.KindUser, medcrypt.HashIdentifier(" alice@EX.com "))
	require.NoError(t, err)

	view := cipher.HydrateUser(row)
	require.NotNil(t, view)
	assert.Equal(t, "u-1", view.ID)
	assert.Equal(t, "alice@ex.com", *view.Email)
	assert.Equal(t, "Alice Doe", *view.Name)
}

func TestSaveAccountRejectsMissingHash(t *testing.T) {
	db, cipher := newTestStore(t)

	secrets, err := cipher.BuildUserSecrets(medcrypt.UserFields{FirstName: "NoEmail"})
	require.NoError(t, err)

	err = db.SaveAccount(context.Background(), store.KindUser, "u-1", secrets)
	assert.ErrorIs(t, err, store.ErrMissingEmailHash)
}

func TestSaveAccountUpsertsWholeTuple(t *testing.T) {
	db, cipher := newTestStore(t)
	ctx := context.Background()

	first, err := cipher.BuildUserSecrets(medcrypt.UserFields{FirstName: "Alice", Email: "old@ex.com"})
	require.NoError(t, err)
	require.NoError(t, db.SaveAccount(ctx, store.KindUser, "u-1", first))

	second, err := cipher.BuildUserSecrets(medcrypt.UserFields{FirstName: "Alice", Email: "new@ex.com"})
	require.NoError(t, err)
	require.NoError(t, db.SaveAccount(ctx, store.KindUser, "u-1", second))

	_, err = db.FindAccountByEmailHash(ctx, store.KindUser, medcrypt.HashIdentifier("old@ex.com"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	row, err := db.FindAccountByEmailHash(ctx, store.KindUser, medcrypt.HashIdentifier("new@ex.com"))
	require.NoError(t, err)
	assert.Equal(t, "new@ex.com", *cipher.HydrateUser(row).Email)
}

func TestEmailHashUniquePerKind(t *testing.T) {
	db, cipher := newTestStore(t)
	ctx := context.Background()

	secrets, err := cipher.BuildUserSecrets(medcrypt.UserFields{FirstName: "Alice", Email: "alice@ex.com"})
	require.NoError(t, err)
	require.NoError(t, db.SaveAccount(ctx, store.KindUser, "u-1", secrets))

	// Same email on a second user account violates the unique index.
	dup, err := cipher.BuildUserSecrets(medcrypt.UserFields{FirstName: "Imposter", Email: "alice@ex.com"})
	require.NoError(t, err)
	assert.Error(t, db.SaveAccount(ctx, store.KindUser, "u-2", dup))

	// The same email on a different account kind is allowed.
	pro, err := cipher.BuildProfessionalSecrets(medcrypt.ProfessionalFields{Name: "Dr. Alice", Email: "alice@ex.com"})
	require.NoError(t, err)
	assert.NoError(t, db.SaveAccount(ctx, store.KindProfessional, "p-1", pro))
}

func TestListAccounts(t *testing.T) {
	db, cipher := newTestStore(t)
	ctx := context.Background()

	for _, email := range []string{"a@ex.com", "b@ex.com", "c@ex.com"} {
		secrets, err := cipher.BuildUserSecrets(medcrypt.UserFields{FirstName: "X", Email: email})
		require.NoError(t, err)
		require.NoError(t, db.SaveAccount(ctx, store.KindUser, "id-"+email, secrets))
	}

	rows, err := db.ListAccounts(ctx, store.KindUser)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		view := cipher.HydrateUser(row)
		require.NotNil(t, view)
		assert.NotNil(t, view.Email)
	}

	empty, err := db.ListAccounts(ctx, store.KindAdmin)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindAccountEmptyHash(t *testing.T) {
	db, _ := newTestStore(t)
	_, err := db.FindAccountByEmailHash(context.Background(), store.KindUser, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordsRoundTrip(t *testing.T) {
	db, cipher := newTestStore(t)
	ctx := context.Background()

	payload, err := cipher.EncryptJSON(map[string]any{"diagnosis": "all clear", "visit": "2024-03-01"})
	require.NoError(t, err)
	attachment, err := cipher.EncryptBuffer([]byte("%PDF-1.7 lab results"))
	require.NoError(t, err)

	rec := &store.Record{
		PatientID:           "u-1",
		AuthorID:            "p-1",
		PayloadEncrypted:    payload,
		AttachmentEncrypted: attachment,
	}
	require.NoError(t, db.SaveRecord(ctx, rec))
	assert.NotEmpty(t, rec.ID, "an id is assigned on save")

	got, err := db.GetRecord(ctx, rec.ID)
	require.NoError(t, err)

	decrypted, err := cipher.DecryptJSON(got.PayloadEncrypted)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"diagnosis": "all clear", "visit": "2024-03-01"}, decrypted)

	content, err := cipher.DecryptBuffer(got.AttachmentEncrypted)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 lab results"), content)
}

func TestRecordWithoutAttachment(t *testing.T) {
	db, cipher := newTestStore(t)
	ctx := context.Background()

	payload, err := cipher.EncryptJSON("free-text note")
	require.NoError(t, err)
	rec := &store.Record{PatientID: "u-1", PayloadEncrypted: payload}
	require.NoError(t, db.SaveRecord(ctx, rec))

	got, err := db.GetRecord(ctx, rec.ID)
	require.NoError(t, err)

	content, err := cipher.DecryptBuffer(got.AttachmentEncrypted)
	require.NoError(t, err)
	assert.Empty(t, content, "absent attachment reads back as empty content")
}

func TestListRecordsByPatient(t *testing.T) {
	db, cipher := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		payload, err := cipher.EncryptJSON("note")
		require.NoError(t, err)
		require.NoError(t, db.SaveRecord(ctx, &store.Record{PatientID: "u-1", PayloadEncrypted: payload}))
	}
	other, err := cipher.EncryptJSON("other patient")
	require.NoError(t, err)
	require.NoError(t, db.SaveRecord(ctx, &store.Record{PatientID: "u-2", PayloadEncrypted: other}))

	records, err := db.ListRecordsByPatient(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = db.GetRecord(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
