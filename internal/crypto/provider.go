package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// Key sizes
	KeySize   = 32 // AES-256
	NonceSize = 12 // GCM standard
	TagSize   = 16 // GCM tag

	// PBKDF2 parameters for newly created vaults. Unlock never reads
	// these; it uses the iteration count recorded in the vault itself.
	DefaultIterations = 100000
	SaltSize          = 32

	// RecoveryKeySize is the entropy behind a recovery token.
	RecoveryKeySize = 16
)

// Errors
var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	ErrInvalidKey        = errors.New("invalid key size")
	ErrDecryptionFailed  = errors.New("decryption failed")
)

// CryptoProvider implements Provider using the standard AES-GCM and
// PBKDF2 primitives. It holds no state and is safe for concurrent use.
type CryptoProvider struct{}

// NewProvider creates a crypto provider.
func NewProvider() Provider {
	return &CryptoProvider{}
}

// DeriveKey derives a key of keyLen bytes using PBKDF2-HMAC-SHA256.
func (p *CryptoProvider) DeriveKey(secret, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(secret, salt, iterations, keyLen, sha256.New)
}

// EncryptData encrypts plaintext using AES-256-GCM with a fresh nonce.
// Returns: nonce || ciphertext || tag.
func (p *CryptoProvider) EncryptData(plaintext, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, NonceSize+len(ciphertext))
	copy(result[:NonceSize], nonce)
	copy(result[NonceSize:], ciphertext)

	return result, nil
}

// DecryptData decrypts ciphertext produced by EncryptData. A malformed
// frame and an authentication failure both surface as
// ErrDecryptionFailed wrapping the specific cause, so callers cannot be
// used as a decryption oracle.
func (p *CryptoProvider) DecryptData(ciphertext, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	// Minimum size: nonce + tag
	if len(ciphertext) < NonceSize+TagSize {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrInvalidCiphertext)
	}

	nonce := ciphertext[:NonceSize]
	body := ciphertext[NonceSize:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// RandomBytes returns n cryptographically secure random bytes.
func (p *CryptoProvider) RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return buf, nil
}

// NewRecoveryKey generates a 128-bit recovery token rendered as a
// v4-UUID-shaped string for display. The token itself is the secret;
// it is returned to the user exactly once and never stored, only a
// key wrap derived from it persists.
func (p *CryptoProvider) NewRecoveryKey() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate recovery key: %w", err)
	}
	return id.String(), nil
}

// ValidateKeySize checks if the key is the correct size.
func ValidateKeySize(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidKey, KeySize, len(key))
	}
	return nil
}

// Zero overwrites a byte slice in place. Callers drop key material
// through this once a session locks.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
