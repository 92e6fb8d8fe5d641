package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quillsafe/quillsafe/internal/events"
	"github.com/quillsafe/quillsafe/internal/models"
)

// JSONStore implements Store on plain files: one vault.json per user
// plus one file per note. Vault writes go through a temp file and
// os.Rename so the old record is replaced atomically, never half
// overwritten.
type JSONStore struct {
	baseDir string
	logger  *events.Logger

	mu sync.RWMutex
}

// NewJSONStore creates a file-based store rooted at baseDir.
func NewJSONStore(baseDir string, logger *events.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	return &JSONStore{
		baseDir: baseDir,
		logger:  logger.WithField("component", "json_store"),
	}, nil
}

// LoadVault reads the vault record for a user.
func (s *JSONStore) LoadVault(userID string) (*models.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.vaultPath(userID))
	if os.IsNotExist(err) {
		return nil, models.ErrVaultNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "read vault", Err: err}
	}

	var v models.Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	return &v, nil
}

// SaveVault writes the record to a temp file and renames it over the
// old one.
func (s *JSONStore) SaveVault(v *models.Vault) error {
	if err := v.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.userDir(v.UserID), 0700); err != nil {
		return &models.StorageError{Op: "create user directory", Err: err}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode vault", Err: err}
	}

	if err := s.writeAtomic(s.vaultPath(v.UserID), data); err != nil {
		return &models.StorageError{Op: "write vault", Err: err}
	}

	s.logger.WithField("user_id", v.UserID).Debug("Saved vault")
	return nil
}

// DeleteVault removes the user's directory, vault and notes included.
func (s *JSONStore) DeleteVault(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.userDir(userID)); err != nil {
		return &models.StorageError{Op: "delete vault", Err: err}
	}
	return nil
}

// SaveNote writes an entry file.
func (s *JSONStore) SaveNote(userID string, note *models.EncryptedNote) error {
	if err := note.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.notesDir(userID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &models.StorageError{Op: "create notes directory", Err: err}
	}

	data, err := json.MarshalIndent(note, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode note", Err: err}
	}

	if err := s.writeAtomic(filepath.Join(dir, note.ID+".json"), data); err != nil {
		return &models.StorageError{Op: "write note", Err: err}
	}
	return nil
}

// GetNote reads one entry.
func (s *JSONStore) GetNote(userID, noteID string) (*models.EncryptedNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.notesDir(userID), noteID+".json"))
	if os.IsNotExist(err) {
		return nil, models.ErrNoteNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "read note", Err: err}
	}

	var n models.EncryptedNote
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNote removes an entry file.
func (s *JSONStore) DeleteNote(userID, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.notesDir(userID), noteID+".json"))
	if os.IsNotExist(err) {
		return models.ErrNoteNotFound
	}
	if err != nil {
		return &models.StorageError{Op: "delete note", Err: err}
	}
	return nil
}

// ListNotes scans the notes directory and returns metadata, newest
// first.
func (s *JSONStore) ListNotes(userID string) ([]models.NoteMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.notesDir(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.StorageError{Op: "list notes", Err: err}
	}

	var metas []models.NoteMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.notesDir(userID), entry.Name()))
		if err != nil {
			return nil, &models.StorageError{Op: "read note", Err: err}
		}

		var n models.EncryptedNote
		if err := json.Unmarshal(data, &n); err != nil {
			s.logger.WithField("file", entry.Name()).Warn("Skipping corrupt note file")
			continue
		}
		metas = append(metas, n.Meta())
	}

	sort.Slice(metas, func(i, j int) bool {
		if !metas[i].Date.Equal(metas[j].Date) {
			return metas[i].Date.After(metas[j].Date)
		}
		return metas[i].ID < metas[j].ID
	})

	return metas, nil
}

// Close is a no-op for the file store.
func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) userDir(userID string) string {
	return filepath.Join(s.baseDir, sanitize(userID))
}

func (s *JSONStore) vaultPath(userID string) string {
	return filepath.Join(s.userDir(userID), "vault.json")
}

func (s *JSONStore) notesDir(userID string) string {
	return filepath.Join(s.userDir(userID), "notes")
}

// writeAtomic writes to a temp file in the target directory and
// renames it into place.
func (s *JSONStore) writeAtomic(path string, data []byte) error {
	tempPath := fmt.Sprintf("%s.tmp.%d", path, time.Now().UnixNano())

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return nil
}

// sanitize keeps user IDs from escaping the store directory.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, id)
}
