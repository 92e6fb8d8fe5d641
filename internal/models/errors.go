package models

import (
	"errors"
	"fmt"
)

// Error codes for structured error handling.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeAuth       = "AUTH_ERROR"
	ErrCodeIntegrity  = "INTEGRITY_ERROR"
	ErrCodeDecryption = "DECRYPTION_ERROR"
	ErrCodeEncryption = "ENCRYPTION_ERROR"
	ErrCodeStorage    = "STORAGE_ERROR"
	ErrCodeConfig     = "CONFIG_ERROR"
)

// Sentinel errors.
//
// ErrAuthentication carries a single normalized message for every
// wrong-credential path (wrong password, wrong answers, wrong recovery
// key, or a wrap that decrypts to a key of the wrong length). Callers
// must not be able to tell which derivation or decryption step failed.
var (
	ErrAuthentication   = errors.New("authentication failed: invalid credential")
	ErrVaultNotFound    = errors.New("vault not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrEncryptionFailed = errors.New("encryption failed")
)

// ValidationError reports malformed input to a core operation, such as
// the wrong number of security question/answer pairs or a key of the
// wrong length.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// IntegrityError reports persisted vault material that cannot be
// interpreted: bad hex, a salt or wrap of the wrong length. It signals
// corruption or a version mismatch rather than a wrong credential.
type IntegrityError struct {
	Field string
	Err   error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vault integrity: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("vault integrity: %s", e.Field)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// StorageError wraps a persistence failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIntegrity reports whether err is an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
