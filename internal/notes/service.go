// Package notes encrypts, decrypts and persists journal entries under
// the vault's data key. The vault manager is not involved here: after
// an unlock the caller hands the data key straight to this service.
package notes

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quillsafe/quillsafe/internal/crypto"
	"github.com/quillsafe/quillsafe/internal/events"
	"github.com/quillsafe/quillsafe/internal/models"
	"github.com/quillsafe/quillsafe/internal/store"
)

// Service manages journal entries.
type Service struct {
	crypto crypto.Provider
	store  store.NoteStore
	logger *events.Logger
}

// NewService creates a notes service.
func NewService(provider crypto.Provider, noteStore store.NoteStore, logger *events.Logger) *Service {
	return &Service{
		crypto: provider,
		store:  noteStore,
		logger: logger.WithField("service", "notes"),
	}
}

// DecryptedNote is an entry with its ciphertext fields opened.
type DecryptedNote struct {
	Meta models.NoteMeta `json:"meta"`
	Body string          `json:"body"`
	Tags []string        `json:"tags,omitempty"`
}

// EncryptNote builds an EncryptedNote from a draft: the body is
// encrypted under dk with a fresh nonce, and tags (if any) are
// encrypted independently with their own fresh nonce under the same
// key. Title, mood, images and date stay plaintext.
func (s *Service) EncryptNote(dk []byte, draft models.NoteDraft) (*models.EncryptedNote, error) {
	if err := crypto.ValidateKeySize(dk); err != nil {
		return nil, &models.ValidationError{Field: "data_key", Reason: err.Error()}
	}

	content, err := s.crypto.EncryptData([]byte(draft.Body), dk)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt body: %w", models.ErrEncryptionFailed, err)
	}

	date := draft.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	now := time.Now().UTC()
	note := &models.EncryptedNote{
		ID:        uuid.NewString(),
		Date:      date,
		Content:   hex.EncodeToString(content),
		Title:     draft.Title,
		Mood:      draft.Mood,
		Images:    append([]string(nil), draft.Images...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if len(draft.Tags) > 0 {
		encoded, err := json.Marshal(draft.Tags)
		if err != nil {
			return nil, &models.ValidationError{Field: "tags", Reason: err.Error()}
		}
		ct, err := s.crypto.EncryptData(encoded, dk)
		if err != nil {
			return nil, fmt.Errorf("%w: encrypt tags: %w", models.ErrEncryptionFailed, err)
		}
		note.Tags = hex.EncodeToString(ct)
	}

	return note, nil
}

// DecryptNote opens the entry body. A malformed hex frame and a failed
// authentication both come back as the decryption sentinel; the caller
// cannot tell which check failed.
func (s *Service) DecryptNote(dk []byte, note *models.EncryptedNote) (string, error) {
	if err := crypto.ValidateKeySize(dk); err != nil {
		return "", &models.ValidationError{Field: "data_key", Reason: err.Error()}
	}

	ct, err := hex.DecodeString(note.Content)
	if err != nil {
		return "", models.ErrDecryptionFailed
	}

	plaintext, err := s.crypto.DecryptData(ct, dk)
	if err != nil {
		return "", models.ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// DecryptTags opens the entry's tag list. An entry without stored tags
// yields an empty result, not an error.
func (s *Service) DecryptTags(dk []byte, note *models.EncryptedNote) ([]string, error) {
	if note.Tags == "" {
		return nil, nil
	}
	if err := crypto.ValidateKeySize(dk); err != nil {
		return nil, &models.ValidationError{Field: "data_key", Reason: err.Error()}
	}

	ct, err := hex.DecodeString(note.Tags)
	if err != nil {
		return nil, models.ErrDecryptionFailed
	}

	plaintext, err := s.crypto.DecryptData(ct, dk)
	if err != nil {
		return nil, models.ErrDecryptionFailed
	}

	var tags []string
	if err := json.Unmarshal(plaintext, &tags); err != nil {
		return nil, models.ErrDecryptionFailed
	}

	return tags, nil
}

// Create encrypts a draft and persists it.
func (s *Service) Create(userID string, dk []byte, draft models.NoteDraft) (*models.EncryptedNote, error) {
	note, err := s.EncryptNote(dk, draft)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveNote(userID, note); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"note_id": note.ID,
	}).Info("Created entry")

	return note, nil
}

// Update re-encrypts an existing entry from a draft, keeping its ID and
// creation time.
func (s *Service) Update(userID, noteID string, dk []byte, draft models.NoteDraft) (*models.EncryptedNote, error) {
	existing, err := s.store.GetNote(userID, noteID)
	if err != nil {
		return nil, err
	}

	note, err := s.EncryptNote(dk, draft)
	if err != nil {
		return nil, err
	}
	note.ID = existing.ID
	note.CreatedAt = existing.CreatedAt
	if draft.Date.IsZero() {
		note.Date = existing.Date
	}

	if err := s.store.SaveNote(userID, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Read loads and decrypts one entry, tags included.
func (s *Service) Read(userID, noteID string, dk []byte) (*DecryptedNote, error) {
	note, err := s.store.GetNote(userID, noteID)
	if err != nil {
		return nil, err
	}
	return s.open(dk, note)
}

// Delete removes an entry.
func (s *Service) Delete(userID, noteID string) error {
	return s.store.DeleteNote(userID, noteID)
}

// List returns plaintext entry metadata, newest first. No key needed.
func (s *Service) List(userID string) ([]models.NoteMeta, error) {
	return s.store.ListNotes(userID)
}

// Export decrypts every entry for the user.
func (s *Service) Export(userID string, dk []byte) ([]DecryptedNote, error) {
	metas, err := s.store.ListNotes(userID)
	if err != nil {
		return nil, err
	}

	out := make([]DecryptedNote, 0, len(metas))
	for _, meta := range metas {
		note, err := s.store.GetNote(userID, meta.ID)
		if err != nil {
			return nil, err
		}
		opened, err := s.open(dk, note)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", meta.ID, err)
		}
		out = append(out, *opened)
	}

	return out, nil
}

func (s *Service) open(dk []byte, note *models.EncryptedNote) (*DecryptedNote, error) {
	body, err := s.DecryptNote(dk, note)
	if err != nil {
		return nil, err
	}
	tags, err := s.DecryptTags(dk, note)
	if err != nil {
		return nil, err
	}
	return &DecryptedNote{Meta: note.Meta(), Body: body, Tags: tags}, nil
}
