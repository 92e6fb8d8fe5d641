package store

import (
	"sort"
	"sync"

	"github.com/quillsafe/quillsafe/internal/models"
)

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu     sync.RWMutex
	vaults map[string]*models.Vault
	notes  map[string]map[string]*models.EncryptedNote

	// SaveVaultErr forces SaveVault to fail when set.
	SaveVaultErr error
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		vaults: make(map[string]*models.Vault),
		notes:  make(map[string]map[string]*models.EncryptedNote),
	}
}

func (s *MockStore) LoadVault(userID string) (*models.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vaults[userID]
	if !ok {
		return nil, models.ErrVaultNotFound
	}
	return v.Clone(), nil
}

func (s *MockStore) SaveVault(v *models.Vault) error {
	if s.SaveVaultErr != nil {
		return s.SaveVaultErr
	}
	if err := v.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vaults[v.UserID] = v.Clone()
	return nil
}

func (s *MockStore) DeleteVault(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vaults, userID)
	delete(s.notes, userID)
	return nil
}

func (s *MockStore) SaveNote(userID string, note *models.EncryptedNote) error {
	if err := note.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notes[userID] == nil {
		s.notes[userID] = make(map[string]*models.EncryptedNote)
	}
	copied := *note
	s.notes[userID][note.ID] = &copied
	return nil
}

func (s *MockStore) GetNote(userID, noteID string) (*models.EncryptedNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[userID][noteID]
	if !ok {
		return nil, models.ErrNoteNotFound
	}
	copied := *n
	return &copied, nil
}

func (s *MockStore) DeleteNote(userID, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[userID][noteID]; !ok {
		return models.ErrNoteNotFound
	}
	delete(s.notes[userID], noteID)
	return nil
}

func (s *MockStore) ListNotes(userID string) ([]models.NoteMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var metas []models.NoteMeta
	for _, n := range s.notes[userID] {
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

func (s *MockStore) Close() error {
	return nil
}
