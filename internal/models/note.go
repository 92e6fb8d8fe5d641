package models

import (
	"strings"
	"time"
)

// EncryptedNote is a persisted journal entry. Content (and tags, if
// present) are hex(nonce || ciphertext || tag) under the vault's data
// key. Title, mood, images and date stay plaintext so entries can be
// listed without unlocking the vault.
type EncryptedNote struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Content   string    `json:"content"`
	Title     string    `json:"title,omitempty"`
	Mood      string    `json:"mood,omitempty"`
	Images    []string  `json:"images,omitempty"`
	Tags      string    `json:"tags_encrypted,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteDraft is the plaintext input for a new or updated entry.
type NoteDraft struct {
	Date   time.Time
	Body   string
	Title  string
	Mood   string
	Images []string
	Tags   []string
}

// NoteMeta is the listing view of an entry: everything except the
// ciphertext fields. No decryption is needed to produce it.
type NoteMeta struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title,omitempty"`
	Mood      string    `json:"mood,omitempty"`
	Images    []string  `json:"images,omitempty"`
	HasTags   bool      `json:"has_tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meta projects the plaintext metadata of a note.
func (n *EncryptedNote) Meta() NoteMeta {
	return NoteMeta{
		ID:        n.ID,
		Date:      n.Date,
		Title:     n.Title,
		Mood:      n.Mood,
		Images:    append([]string(nil), n.Images...),
		HasTags:   n.Tags != "",
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// Validate checks the structural invariants of a persisted note.
func (n *EncryptedNote) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if n.Content == "" {
		return &ValidationError{Field: "content", Reason: "required"}
	}
	if n.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	return nil
}
