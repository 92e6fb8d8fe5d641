package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quillsafe/quillsafe/internal/events"
	"github.com/quillsafe/quillsafe/internal/models"
)

// SQLiteStore implements Store on a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_store"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return s, nil
}

// initialize creates tables and indexes.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS vaults (
        user_id TEXT PRIMARY KEY,
        record TEXT NOT NULL,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS notes (
        user_id TEXT NOT NULL,
        id TEXT NOT NULL,
        date TIMESTAMP NOT NULL,
        title TEXT NOT NULL DEFAULT '',
        mood TEXT NOT NULL DEFAULT '',
        images TEXT NOT NULL DEFAULT '[]',
        content TEXT NOT NULL,
        tags_encrypted TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL,
        PRIMARY KEY (user_id, id)
    );

    CREATE INDEX IF NOT EXISTS idx_notes_user_date ON notes(user_id, date DESC);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// LoadVault retrieves a vault record.
func (s *SQLiteStore) LoadVault(userID string) (*models.Vault, error) {
	s.logger.WithField("user_id", userID).Debug("Loading vault")

	var record string
	err := s.db.QueryRow(`SELECT record FROM vaults WHERE user_id = ?`, userID).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, models.ErrVaultNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "load vault", Err: err}
	}

	var v models.Vault
	if err := json.Unmarshal([]byte(record), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	return &v, nil
}

// SaveVault replaces the vault record in a single statement, so a
// rotation either lands completely or not at all.
func (s *SQLiteStore) SaveVault(v *models.Vault) error {
	if err := v.Validate(); err != nil {
		return err
	}

	record, err := json.Marshal(v)
	if err != nil {
		return &models.StorageError{Op: "encode vault", Err: err}
	}

	_, err = s.db.Exec(`
        INSERT INTO vaults (user_id, record, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            record = excluded.record,
            updated_at = excluded.updated_at
    `, v.UserID, string(record), v.UpdatedAt)
	if err != nil {
		return &models.StorageError{Op: "save vault", Err: err}
	}

	s.logger.WithField("user_id", v.UserID).Debug("Saved vault")
	return nil
}

// DeleteVault removes a vault record and the user's notes.
func (s *SQLiteStore) DeleteVault(userID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &models.StorageError{Op: "delete vault", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM notes WHERE user_id = ?`, userID); err != nil {
		return &models.StorageError{Op: "delete notes", Err: err}
	}
	if _, err := tx.Exec(`DELETE FROM vaults WHERE user_id = ?`, userID); err != nil {
		return &models.StorageError{Op: "delete vault", Err: err}
	}

	return tx.Commit()
}

// SaveNote creates or replaces an entry.
func (s *SQLiteStore) SaveNote(userID string, note *models.EncryptedNote) error {
	if err := note.Validate(); err != nil {
		return err
	}

	images, err := json.Marshal(note.Images)
	if err != nil {
		return &models.StorageError{Op: "encode images", Err: err}
	}

	_, err = s.db.Exec(`
        INSERT INTO notes (user_id, id, date, title, mood, images, content, tags_encrypted, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id, id) DO UPDATE SET
            date = excluded.date,
            title = excluded.title,
            mood = excluded.mood,
            images = excluded.images,
            content = excluded.content,
            tags_encrypted = excluded.tags_encrypted,
            updated_at = excluded.updated_at
    `, userID, note.ID, note.Date, note.Title, note.Mood, string(images),
		note.Content, note.Tags, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return &models.StorageError{Op: "save note", Err: err}
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"note_id": note.ID,
	}).Debug("Saved note")
	return nil
}

// GetNote retrieves one entry.
func (s *SQLiteStore) GetNote(userID, noteID string) (*models.EncryptedNote, error) {
	row := s.db.QueryRow(`
        SELECT id, date, title, mood, images, content, tags_encrypted, created_at, updated_at
        FROM notes
        WHERE user_id = ? AND id = ?
    `, userID, noteID)

	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNoteNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get note", Err: err}
	}
	if err := note.Validate(); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes an entry.
func (s *SQLiteStore) DeleteNote(userID, noteID string) error {
	res, err := s.db.Exec(`DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, noteID)
	if err != nil {
		return &models.StorageError{Op: "delete note", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoteNotFound
	}
	return nil
}

// ListNotes returns metadata for all entries, newest first. Only
// plaintext columns are read; no decryption happens here.
func (s *SQLiteStore) ListNotes(userID string) ([]models.NoteMeta, error) {
	rows, err := s.db.Query(`
        SELECT id, date, title, mood, images, tags_encrypted != '', created_at, updated_at
        FROM notes
        WHERE user_id = ?
        ORDER BY date DESC, id
    `, userID)
	if err != nil {
		return nil, &models.StorageError{Op: "list notes", Err: err}
	}
	defer rows.Close()

	var metas []models.NoteMeta
	for rows.Next() {
		var m models.NoteMeta
		var images string
		if err := rows.Scan(&m.ID, &m.Date, &m.Title, &m.Mood, &images,
			&m.HasTags, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, &models.StorageError{Op: "scan note row", Err: err}
		}
		if err := json.Unmarshal([]byte(images), &m.Images); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		metas = append(metas, m)
	}

	return metas, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (*models.EncryptedNote, error) {
	var n models.EncryptedNote
	var images string
	var date, created, updated time.Time

	if err := row.Scan(&n.ID, &date, &n.Title, &n.Mood, &images,
		&n.Content, &n.Tags, &created, &updated); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(images), &n.Images); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	n.Date = date
	n.CreatedAt = created
	n.UpdatedAt = updated
	return &n, nil
}
