// Package vault implements the key-management core: a single 256-bit
// data key protects all journal content, wrapped independently under
// three interchangeable unlock paths (password, security answers,
// recovery key). Rotation and recovery re-wrap the data key; nothing
// ever regenerates it.
package vault

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/quillsafe/quillsafe/internal/crypto"
	"github.com/quillsafe/quillsafe/internal/events"
	"github.com/quillsafe/quillsafe/internal/models"
)

// Manager orchestrates vault creation, unlock, rotation and recovery.
// It holds no session state: every operation is a pure function of its
// inputs plus fresh randomness, so concurrent calls are safe without
// locking. The data key returned from an unlock belongs to the caller,
// who is responsible for zeroing it on lock.
type Manager struct {
	crypto crypto.Provider
	logger *events.Logger

	// iterations applies to newly created vaults only. Unlock always
	// uses the count recorded in the vault being opened.
	iterations int
}

// NewManager creates a vault manager.
func NewManager(provider crypto.Provider, logger *events.Logger) *Manager {
	return &Manager{
		crypto:     provider,
		logger:     logger.WithField("service", "vault"),
		iterations: crypto.DefaultIterations,
	}
}

// NewManagerWithIterations overrides the KDF cost for new vaults.
// Intended for tests and for operators raising the default policy.
func NewManagerWithIterations(provider crypto.Provider, logger *events.Logger, iterations int) *Manager {
	m := NewManager(provider, logger)
	if iterations > 0 {
		m.iterations = iterations
	}
	return m
}

// InitResult is returned from InitializeVault. RecoveryKey appears here
// exactly once; it is never stored in recoverable form.
type InitResult struct {
	Vault       *models.Vault
	RecoveryKey string
	DataKey     []byte
}

// RecoverResult is returned from RecoverAndReset. The consumed recovery
// key is invalid against the new vault; RecoveryKey replaces it.
type RecoverResult struct {
	Vault       *models.Vault
	RecoveryKey string
}

// InitializeVault creates a vault for userID: one fresh 256-bit data
// key, three independent salts, and three wraps of the same data key
// under keys derived from the password, the normalized security
// answers, and a newly generated recovery key.
func (m *Manager) InitializeVault(userID, password string, pairs []models.QAPair) (*InitResult, error) {
	if err := validatePairs(pairs); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &models.ValidationError{Field: "password", Reason: "required"}
	}

	dk, err := m.crypto.RandomBytes(crypto.KeySize)
	if err != nil {
		return nil, fmt.Errorf("generate data key: %w", err)
	}

	salts, err := m.newSalts()
	if err != nil {
		return nil, err
	}

	recoveryKey, err := m.crypto.NewRecoveryKey()
	if err != nil {
		return nil, err
	}

	questions := make([]string, len(pairs))
	answers := make([]string, len(pairs))
	for i, p := range pairs {
		questions[i] = p.QuestionID
		answers[i] = p.Answer
	}

	now := time.Now().UTC()
	v := &models.Vault{
		UserID: userID,
		KDF: models.KDFParams{
			Algorithm:  models.KDFAlgorithmPBKDF2SHA256,
			Iterations: m.iterations,
		},
		Salts:             salts,
		SecurityQuestions: questions,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if v.Wraps.ByPassword, err = m.wrap(dk, []byte(password), salts.Master, v.KDF.Iterations); err != nil {
		return nil, err
	}
	secret := m.crypto.NormalizeAnswers(answers)
	if v.Wraps.BySecurity, err = m.wrap(dk, []byte(secret), salts.Security, v.KDF.Iterations); err != nil {
		return nil, err
	}
	if v.Wraps.ByRecovery, err = m.wrap(dk, []byte(recoveryKey), salts.Recovery, v.KDF.Iterations); err != nil {
		return nil, err
	}

	m.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"iterations": v.KDF.Iterations,
	}).Info("Initialized vault")

	return &InitResult{Vault: v, RecoveryKey: recoveryKey, DataKey: dk}, nil
}

// UnlockWithPassword derives the password-path key and unwraps the data
// key. A wrong password and a corrupted wrap are indistinguishable to
// the caller: both return the same authentication error.
func (m *Manager) UnlockWithPassword(v *models.Vault, password string) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return m.unwrap(v, []byte(password), v.Salts.Master, v.Wraps.ByPassword)
}

// UnlockWithAnswers unlocks via the security-answer path. Supplied
// pairs are matched to the vault's recorded question order, so callers
// may pass them in any order as long as every recorded question is
// answered.
func (m *Manager) UnlockWithAnswers(v *models.Vault, pairs []models.QAPair) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := validatePairs(pairs); err != nil {
		return nil, err
	}

	secret, err := m.answersSecret(v, pairs)
	if err != nil {
		return nil, err
	}
	return m.unwrap(v, []byte(secret), v.Salts.Security, v.Wraps.BySecurity)
}

// unlockWithRecoveryKey is internal: recovery always flows through
// RecoverAndReset so the consumed key cannot be replayed.
func (m *Manager) unlockWithRecoveryKey(v *models.Vault, recoveryKey string) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return m.unwrap(v, []byte(recoveryKey), v.Salts.Recovery, v.Wraps.ByRecovery)
}

// RecoverAndReset unlocks with the recovery key and atomically rotates
// both the password path (fresh master salt, wrap under newPassword)
// and the recovery path (fresh recovery salt, brand-new recovery key).
// The security-answer path is untouched. The old recovery key is
// invalid against the returned vault.
func (m *Manager) RecoverAndReset(v *models.Vault, recoveryKey, newPassword string) (*RecoverResult, error) {
	if newPassword == "" {
		return nil, &models.ValidationError{Field: "password", Reason: "required"}
	}

	dk, err := m.unlockWithRecoveryKey(v, recoveryKey)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(dk)

	out := v.Clone()

	if out.Salts.Master, err = m.newSaltHex(); err != nil {
		return nil, err
	}
	if out.Wraps.ByPassword, err = m.wrap(dk, []byte(newPassword), out.Salts.Master, out.KDF.Iterations); err != nil {
		return nil, err
	}

	newRecoveryKey, err := m.crypto.NewRecoveryKey()
	if err != nil {
		return nil, err
	}
	if out.Salts.Recovery, err = m.newSaltHex(); err != nil {
		return nil, err
	}
	if out.Wraps.ByRecovery, err = m.wrap(dk, []byte(newRecoveryKey), out.Salts.Recovery, out.KDF.Iterations); err != nil {
		return nil, err
	}

	out.UpdatedAt = time.Now().UTC()

	m.logger.WithField("user_id", v.UserID).Info("Recovered vault and rotated credentials")

	return &RecoverResult{Vault: out, RecoveryKey: newRecoveryKey}, nil
}

// RebuildWithNewPassword rotates only the password path. The caller
// must already hold the data key from a prior unlock; the security and
// recovery paths are bit-identical before and after.
func (m *Manager) RebuildWithNewPassword(v *models.Vault, dk []byte, newPassword string) (*models.Vault, error) {
	if err := crypto.ValidateKeySize(dk); err != nil {
		return nil, &models.ValidationError{Field: "data_key", Reason: err.Error()}
	}
	if newPassword == "" {
		return nil, &models.ValidationError{Field: "password", Reason: "required"}
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	out := v.Clone()

	var err error
	if out.Salts.Master, err = m.newSaltHex(); err != nil {
		return nil, err
	}
	if out.Wraps.ByPassword, err = m.wrap(dk, []byte(newPassword), out.Salts.Master, out.KDF.Iterations); err != nil {
		return nil, err
	}
	out.UpdatedAt = time.Now().UTC()

	m.logger.WithField("user_id", v.UserID).Info("Rotated password wrap")

	return out, nil
}

// RebuildWithNewSecurityAnswers rotates only the security-answer path:
// fresh security salt, new question list, new wrap. Password and
// recovery paths are untouched.
func (m *Manager) RebuildWithNewSecurityAnswers(v *models.Vault, dk []byte, pairs []models.QAPair) (*models.Vault, error) {
	if err := crypto.ValidateKeySize(dk); err != nil {
		return nil, &models.ValidationError{Field: "data_key", Reason: err.Error()}
	}
	if err := validatePairs(pairs); err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	out := v.Clone()

	questions := make([]string, len(pairs))
	answers := make([]string, len(pairs))
	for i, p := range pairs {
		questions[i] = p.QuestionID
		answers[i] = p.Answer
	}
	out.SecurityQuestions = questions

	var err error
	if out.Salts.Security, err = m.newSaltHex(); err != nil {
		return nil, err
	}
	secret := m.crypto.NormalizeAnswers(answers)
	if out.Wraps.BySecurity, err = m.wrap(dk, []byte(secret), out.Salts.Security, out.KDF.Iterations); err != nil {
		return nil, err
	}
	out.UpdatedAt = time.Now().UTC()

	m.logger.WithField("user_id", v.UserID).Info("Rotated security answer wrap")

	return out, nil
}

// VerifySecurityAnswers is a non-throwing probe: it attempts the
// security unlock and reports success as a boolean. The data key never
// reaches the caller.
func (m *Manager) VerifySecurityAnswers(v *models.Vault, pairs []models.QAPair) bool {
	dk, err := m.UnlockWithAnswers(v, pairs)
	if err != nil {
		return false
	}
	crypto.Zero(dk)
	return true
}

// SecurityQuestions returns the vault's question IDs in the order
// recorded at creation, which is the order answers must be supplied in.
func (m *Manager) SecurityQuestions(v *models.Vault) []string {
	return append([]string(nil), v.SecurityQuestions...)
}

// wrap derives a key from secret and encrypts the data key under it
// with a fresh nonce, returning hex(nonce || ciphertext || tag).
func (m *Manager) wrap(dk, secret []byte, saltHex string, iterations int) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", &models.IntegrityError{Field: "salt", Err: err}
	}

	derived := m.crypto.DeriveKey(secret, salt, iterations, crypto.KeySize)
	defer crypto.Zero(derived)

	ct, err := m.crypto.EncryptData(dk, derived)
	if err != nil {
		return "", fmt.Errorf("%w: wrap data key: %w", models.ErrEncryptionFailed, err)
	}
	return hex.EncodeToString(ct), nil
}

// unwrap reverses wrap. Every failure past input parsing collapses into
// models.ErrAuthentication: a wrong credential, a tampered wrap and a
// decrypted key of the wrong length are deliberately indistinguishable.
func (m *Manager) unwrap(v *models.Vault, secret []byte, saltHex, wrapHex string) ([]byte, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, &models.IntegrityError{Field: "salt", Err: err}
	}
	ct, err := hex.DecodeString(wrapHex)
	if err != nil {
		return nil, &models.IntegrityError{Field: "wrap", Err: err}
	}

	derived := m.crypto.DeriveKey(secret, salt, v.KDF.Iterations, crypto.KeySize)
	defer crypto.Zero(derived)

	dk, err := m.crypto.DecryptData(ct, derived)
	if err != nil {
		return nil, models.ErrAuthentication
	}
	if len(dk) != crypto.KeySize {
		crypto.Zero(dk)
		return nil, models.ErrAuthentication
	}
	return dk, nil
}

// answersSecret assembles the canonical KDF secret for the security
// path, ordering the supplied answers by the vault's recorded question
// list. A missing or unknown question reads as a wrong credential.
func (m *Manager) answersSecret(v *models.Vault, pairs []models.QAPair) (string, error) {
	byQuestion := make(map[string]string, len(pairs))
	for _, p := range pairs {
		byQuestion[p.QuestionID] = p.Answer
	}

	answers := make([]string, 0, len(v.SecurityQuestions))
	for _, q := range v.SecurityQuestions {
		a, ok := byQuestion[q]
		if !ok {
			return "", models.ErrAuthentication
		}
		answers = append(answers, a)
	}
	return m.crypto.NormalizeAnswers(answers), nil
}

func (m *Manager) newSalts() (models.VaultSalts, error) {
	var salts models.VaultSalts
	var err error
	if salts.Master, err = m.newSaltHex(); err != nil {
		return salts, err
	}
	if salts.Security, err = m.newSaltHex(); err != nil {
		return salts, err
	}
	if salts.Recovery, err = m.newSaltHex(); err != nil {
		return salts, err
	}
	return salts, nil
}

func (m *Manager) newSaltHex() (string, error) {
	salt, err := m.crypto.RandomBytes(crypto.SaltSize)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

func validatePairs(pairs []models.QAPair) error {
	if len(pairs) != models.QuestionCount {
		return &models.ValidationError{
			Field:  "qa_pairs",
			Reason: fmt.Sprintf("expected %d pairs, got %d", models.QuestionCount, len(pairs)),
		}
	}
	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if p.QuestionID == "" {
			return &models.ValidationError{Field: "qa_pairs", Reason: "question id required"}
		}
		if seen[p.QuestionID] {
			return &models.ValidationError{Field: "qa_pairs", Reason: "duplicate question id"}
		}
		seen[p.QuestionID] = true
	}
	return nil
}
