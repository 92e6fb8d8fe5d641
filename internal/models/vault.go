package models

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// KDF algorithm identifiers. Only PBKDF2-HMAC-SHA256 is produced today;
// the field is persisted so older vaults stay unlockable if the default
// ever changes.
const (
	KDFAlgorithmPBKDF2SHA256 = "pbkdf2-sha256"

	// QuestionCount is the fixed number of security question/answer
	// pairs participating in the security wrap.
	QuestionCount = 3
)

// KDFParams records how the unlock keys for a vault were derived.
// Unlock must always read Iterations from here, never from a global
// default, so that vaults created under an older iteration policy
// remain unlockable.
type KDFParams struct {
	Algorithm  string `json:"algorithm"`
	Iterations int    `json:"iterations"`
}

// VaultSalts holds one independent random salt per unlock path,
// hex encoded.
type VaultSalts struct {
	Master   string `json:"master"`
	Security string `json:"security"`
	Recovery string `json:"recovery"`
}

// KeyWraps holds the data key encrypted under each unlock path's
// derived key. Each value is hex(nonce || ciphertext || tag) and every
// wrap decrypts to the identical 256-bit data key.
type KeyWraps struct {
	ByPassword string `json:"by_password"`
	BySecurity string `json:"by_security"`
	ByRecovery string `json:"by_recovery"`
}

// Vault is the persisted key-management record for one user. It is
// immutable by replacement: every rotation produces a complete new
// Vault and the store swaps it in atomically.
type Vault struct {
	UserID            string     `json:"user_id"`
	KDF               KDFParams  `json:"kdf"`
	Salts             VaultSalts `json:"salts"`
	Wraps             KeyWraps   `json:"wraps"`
	SecurityQuestions []string   `json:"security_questions"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// QAPair is one security question with its free-text answer. Answers
// are never persisted; only their contribution to Wraps.BySecurity is.
type QAPair struct {
	QuestionID string
	Answer     string
}

// Validate checks the structural invariants of a persisted vault.
func (v *Vault) Validate() error {
	if strings.TrimSpace(v.UserID) == "" {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}

	if v.KDF.Algorithm != KDFAlgorithmPBKDF2SHA256 {
		return &IntegrityError{Field: "kdf.algorithm",
			Err: fmt.Errorf("unsupported algorithm %q", v.KDF.Algorithm)}
	}

	if v.KDF.Iterations <= 0 {
		return &IntegrityError{Field: "kdf.iterations",
			Err: fmt.Errorf("must be positive, got %d", v.KDF.Iterations)}
	}

	if len(v.SecurityQuestions) != QuestionCount {
		return &IntegrityError{Field: "security_questions",
			Err: fmt.Errorf("expected %d, got %d", QuestionCount, len(v.SecurityQuestions))}
	}

	for field, salt := range map[string]string{
		"salts.master":   v.Salts.Master,
		"salts.security": v.Salts.Security,
		"salts.recovery": v.Salts.Recovery,
	} {
		raw, err := hex.DecodeString(salt)
		if err != nil {
			return &IntegrityError{Field: field, Err: err}
		}
		// 128 bits is the floor; we write 256-bit salts.
		if len(raw) < 16 {
			return &IntegrityError{Field: field,
				Err: fmt.Errorf("salt too short: %d bytes", len(raw))}
		}
	}

	for field, wrap := range map[string]string{
		"wraps.by_password": v.Wraps.ByPassword,
		"wraps.by_security": v.Wraps.BySecurity,
		"wraps.by_recovery": v.Wraps.ByRecovery,
	} {
		if wrap == "" {
			return &IntegrityError{Field: field, Err: fmt.Errorf("empty wrap")}
		}
		if _, err := hex.DecodeString(wrap); err != nil {
			return &IntegrityError{Field: field, Err: err}
		}
	}

	if v.CreatedAt.IsZero() || v.UpdatedAt.IsZero() {
		return &IntegrityError{Field: "timestamps", Err: fmt.Errorf("missing")}
	}

	return nil
}

// Clone returns a deep copy so rotation operations can build a new
// vault without mutating the caller's snapshot.
func (v *Vault) Clone() *Vault {
	out := *v
	out.SecurityQuestions = append([]string(nil), v.SecurityQuestions...)
	return &out
}
