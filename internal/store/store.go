package store

import (
	"errors"

	"github.com/quillsafe/quillsafe/internal/models"
)

// VaultStore persists vault records. The store treats the vault as an
// opaque blob of key material: it never interprets salts or wraps.
// SaveVault replaces any existing record atomically, which is what
// makes rotation and recovery safe against partial writes.
type VaultStore interface {
	// LoadVault retrieves the vault for a user.
	LoadVault(userID string) (*models.Vault, error)

	// SaveVault atomically creates or replaces the user's vault.
	SaveVault(v *models.Vault) error

	// DeleteVault removes the user's vault.
	DeleteVault(userID string) error
}

// NoteStore persists encrypted journal entries. Ciphertext fields pass
// through untouched; plaintext metadata drives listing order.
type NoteStore interface {
	// SaveNote creates or replaces an entry.
	SaveNote(userID string, note *models.EncryptedNote) error

	// GetNote retrieves one entry by ID.
	GetNote(userID, noteID string) (*models.EncryptedNote, error)

	// DeleteNote removes an entry.
	DeleteNote(userID, noteID string) error

	// ListNotes returns entry metadata ordered by date, newest first.
	ListNotes(userID string) ([]models.NoteMeta, error)
}

// Store combines vault and note persistence.
type Store interface {
	VaultStore
	NoteStore

	// Close releases resources.
	Close() error
}

// Errors
var (
	ErrCorrupt = errors.New("store record is corrupt")
)

// Drivers selectable via config.
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)
