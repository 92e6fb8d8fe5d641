package crypto

// Provider defines the interface for cryptographic operations.
type Provider interface {
	// DeriveKey derives a key from a secret using PBKDF2-HMAC-SHA256.
	// Deterministic: identical inputs always yield identical output.
	DeriveKey(secret, salt []byte, iterations, keyLen int) []byte

	// NormalizeAnswers canonicalizes security answers into the stable
	// KDF input for the security unlock path.
	NormalizeAnswers(answers []string) string

	// EncryptData encrypts plaintext using AES-256-GCM.
	EncryptData(plaintext, key []byte) ([]byte, error)

	// DecryptData decrypts ciphertext produced by EncryptData.
	DecryptData(ciphertext, key []byte) ([]byte, error)

	// RandomBytes returns n cryptographically secure random bytes.
	RandomBytes(n int) ([]byte, error)

	// NewRecoveryKey generates a fresh recovery token for display.
	NewRecoveryKey() (string, error)
}
