package notes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillsafe/quillsafe/internal/crypto"
	"github.com/quillsafe/quillsafe/internal/models"
	"github.com/quillsafe/quillsafe/internal/notes"
	"github.com/quillsafe/quillsafe/internal/store"
	"github.com/quillsafe/quillsafe/test/testutil"
)

func newService() (*notes.Service, *store.MockStore) {
	mockStore := store.NewMockStore()
	svc := notes.NewService(crypto.NewProvider(), mockStore, testutil.NewTestLogger())
	return svc, mockStore
}

func testKey() []byte {
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEncryptDecryptNote(t *testing.T) {
	svc, _ := newService()
	dk := testKey()

	note, err := svc.EncryptNote(dk, models.NoteDraft{
		Body:  "Dear diary, the sea was loud today.",
		Title: "At the coast",
		Mood:  "calm",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "At the coast", note.Title)
	assert.Equal(t, "calm", note.Mood)
	assert.Empty(t, note.Tags)

	// Ciphertext never contains the plaintext.
	assert.NotContains(t, note.Content, "sea was loud")

	body, err := svc.DecryptNote(dk, note)
	require.NoError(t, err)
	assert.Equal(t, "Dear diary, the sea was loud today.", body)
}

func TestEncryptNote_FreshIVPerCall(t *testing.T) {
	svc, _ := newService()
	dk := testKey()
	draft := models.NoteDraft{Body: "same text"}

	a, err := svc.EncryptNote(dk, draft)
	require.NoError(t, err)
	b, err := svc.EncryptNote(dk, draft)
	require.NoError(t, err)

	assert.NotEqual(t, a.Content, b.Content)
}

func TestNoteTags(t *testing.T) {
	svc, _ := newService()
	dk := testKey()

	t.Run("round trip", func(t *testing.T) {
		note, err := svc.EncryptNote(dk, models.NoteDraft{
			Body: "entry",
			Tags: []string{"travel", "family"},
		})
		require.NoError(t, err)
		require.NotEmpty(t, note.Tags)

		// Tags get their own nonce, independent of the body's.
		assert.NotEqual(t, note.Content[:crypto.NonceSize*2], note.Tags[:crypto.NonceSize*2])

		tags, err := svc.DecryptTags(dk, note)
		require.NoError(t, err)
		assert.Equal(t, []string{"travel", "family"}, tags)
	})

	t.Run("absent tags is empty result, not an error", func(t *testing.T) {
		note, err := svc.EncryptNote(dk, models.NoteDraft{Body: "entry"})
		require.NoError(t, err)

		tags, err := svc.DecryptTags(dk, note)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("wrong key", func(t *testing.T) {
		note, err := svc.EncryptNote(dk, models.NoteDraft{
			Body: "entry",
			Tags: []string{"secret"},
		})
		require.NoError(t, err)

		other := make([]byte, crypto.KeySize)
		_, err = svc.DecryptTags(other, note)
		assert.ErrorIs(t, err, models.ErrDecryptionFailed)
	})
}

func TestDecryptNote_Failures(t *testing.T) {
	svc, _ := newService()
	dk := testKey()

	note, err := svc.EncryptNote(dk, models.NoteDraft{Body: "entry"})
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other := make([]byte, crypto.KeySize)
		_, err := svc.DecryptNote(other, note)
		assert.ErrorIs(t, err, models.ErrDecryptionFailed)
	})

	t.Run("malformed hex collapses to the same error", func(t *testing.T) {
		bad := *note
		bad.Content = "zz" + bad.Content[2:]
		_, err := svc.DecryptNote(dk, &bad)
		assert.ErrorIs(t, err, models.ErrDecryptionFailed)
	})

	t.Run("truncated frame collapses to the same error", func(t *testing.T) {
		bad := *note
		bad.Content = bad.Content[:8]
		_, err := svc.DecryptNote(dk, &bad)
		assert.ErrorIs(t, err, models.ErrDecryptionFailed)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := svc.DecryptNote([]byte("short"), note)
		assert.True(t, models.IsValidation(err))
	})
}

func TestServiceCRUD(t *testing.T) {
	svc, _ := newService()
	dk := testKey()
	const user = "alice"

	created, err := svc.Create(user, dk, models.NoteDraft{
		Date:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Body:  "First entry",
		Title: "one",
		Tags:  []string{"start"},
	})
	require.NoError(t, err)

	t.Run("read", func(t *testing.T) {
		entry, err := svc.Read(user, created.ID, dk)
		require.NoError(t, err)
		assert.Equal(t, "First entry", entry.Body)
		assert.Equal(t, []string{"start"}, entry.Tags)
		assert.Equal(t, "one", entry.Meta.Title)
		assert.True(t, entry.Meta.HasTags)
	})

	t.Run("update keeps identity", func(t *testing.T) {
		updated, err := svc.Update(user, created.ID, dk, models.NoteDraft{
			Body:  "First entry, revised",
			Title: "one (rev)",
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.Equal(t, created.Date, updated.Date)

		entry, err := svc.Read(user, created.ID, dk)
		require.NoError(t, err)
		assert.Equal(t, "First entry, revised", entry.Body)
		assert.Empty(t, entry.Tags)
	})

	t.Run("list is metadata only, newest first", func(t *testing.T) {
		_, err := svc.Create(user, dk, models.NoteDraft{
			Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			Body: "Later entry",
		})
		require.NoError(t, err)

		metas, err := svc.List(user)
		require.NoError(t, err)
		require.Len(t, metas, 2)
		assert.True(t, metas[0].Date.After(metas[1].Date))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(user, created.ID))
		_, err := svc.Read(user, created.ID, dk)
		assert.ErrorIs(t, err, models.ErrNoteNotFound)
	})
}

func TestExport(t *testing.T) {
	svc, _ := newService()
	dk := testKey()
	const user = "alice"

	for i, body := range []string{"one", "two", "three"} {
		_, err := svc.Create(user, dk, models.NoteDraft{
			Date: time.Date(2026, 4, i+1, 0, 0, 0, 0, time.UTC),
			Body: body,
		})
		require.NoError(t, err)
	}

	entries, err := svc.Export(user, dk)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "three", entries[0].Body) // newest first
	assert.Equal(t, "one", entries[2].Body)

	t.Run("wrong key fails closed", func(t *testing.T) {
		other := make([]byte, crypto.KeySize)
		_, err := svc.Export(user, other)
		assert.ErrorIs(t, err, models.ErrDecryptionFailed)
	})
}
