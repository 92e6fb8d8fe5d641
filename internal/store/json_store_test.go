package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillsafe/quillsafe/internal/models"
	"github.com/quillsafe/quillsafe/internal/store"
	"github.com/quillsafe/quillsafe/test/testutil"
)

func newJSONStore(t *testing.T) (*store.JSONStore, string) {
	t.Helper()

	dir := t.TempDir()
	s, err := store.NewJSONStore(dir, testutil.NewTestLogger())
	require.NoError(t, err)
	return s, dir
}

func TestJSONStore_VaultRoundTrip(t *testing.T) {
	s, dir := newJSONStore(t)
	v := fixtureVault(t)

	_, err := s.LoadVault(v.UserID)
	assert.ErrorIs(t, err, models.ErrVaultNotFound)

	require.NoError(t, s.SaveVault(v))

	loaded, err := s.LoadVault(v.UserID)
	require.NoError(t, err)
	assert.Equal(t, v.Salts, loaded.Salts)
	assert.Equal(t, v.Wraps, loaded.Wraps)

	// No temp files left behind after the atomic rename.
	entries, err := os.ReadDir(filepath.Join(dir, v.UserID))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp."), "leftover temp file %s", e.Name())
	}
}

func TestJSONStore_CorruptVault(t *testing.T) {
	s, dir := newJSONStore(t)
	v := fixtureVault(t)
	require.NoError(t, s.SaveVault(v))

	path := filepath.Join(dir, v.UserID, "vault.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := s.LoadVault(v.UserID)
	assert.ErrorIs(t, err, store.ErrCorrupt)
}

func TestJSONStore_TamperedNote(t *testing.T) {
	s, dir := newJSONStore(t)
	const user = "alice"

	note := fixtureNote("n1", time.Now().UTC())
	require.NoError(t, s.SaveNote(user, note))

	// Hand-edit the file: valid JSON, but the ciphertext is gone. Load
	// must fail structurally, not pass garbage to decryption.
	path := filepath.Join(dir, user, "notes", "n1.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"n1","date":"2026-01-10T00:00:00Z"}`), 0600))

	_, err := s.GetNote(user, "n1")
	assert.True(t, models.IsValidation(err), "want ValidationError, got %v", err)
}

func TestJSONStore_NoteCRUD(t *testing.T) {
	s, _ := newJSONStore(t)
	const user = "alice"

	note := fixtureNote("n1", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveNote(user, note))

	loaded, err := s.GetNote(user, "n1")
	require.NoError(t, err)
	assert.Equal(t, note.Content, loaded.Content)

	require.NoError(t, s.DeleteNote(user, "n1"))
	_, err = s.GetNote(user, "n1")
	assert.ErrorIs(t, err, models.ErrNoteNotFound)
}

func TestJSONStore_ListNotesOrder(t *testing.T) {
	s, _ := newJSONStore(t)
	const user = "alice"

	require.NoError(t, s.SaveNote(user, fixtureNote("old", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, s.SaveNote(user, fixtureNote("new", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))))

	metas, err := s.ListNotes(user)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "new", metas[0].ID)
	assert.Equal(t, "old", metas[1].ID)
}

func TestJSONStore_DeleteVault(t *testing.T) {
	s, _ := newJSONStore(t)
	v := fixtureVault(t)
	require.NoError(t, s.SaveVault(v))
	require.NoError(t, s.SaveNote(v.UserID, fixtureNote("n1", time.Now().UTC())))

	require.NoError(t, s.DeleteVault(v.UserID))

	_, err := s.LoadVault(v.UserID)
	assert.ErrorIs(t, err, models.ErrVaultNotFound)

	metas, err := s.ListNotes(v.UserID)
	require.NoError(t, err)
	assert.Empty(t, metas)
}
