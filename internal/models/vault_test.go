package models_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quillsafe/quillsafe/internal/models"
)

func validVault() *models.Vault {
	salt := hex.EncodeToString(make([]byte, 32))
	wrap := hex.EncodeToString(make([]byte, 60))
	now := time.Now().UTC()

	return &models.Vault{
		UserID: "alice",
		KDF: models.KDFParams{
			Algorithm:  models.KDFAlgorithmPBKDF2SHA256,
			Iterations: 100000,
		},
		Salts: models.VaultSalts{Master: salt, Security: salt, Recovery: salt},
		Wraps: models.KeyWraps{ByPassword: wrap, BySecurity: wrap, ByRecovery: wrap},
		SecurityQuestions: []string{"q1", "q2", "q3"},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestVaultValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validVault().Validate())
	})

	tests := []struct {
		name      string
		mutate    func(*models.Vault)
		integrity bool
	}{
		{
			name:   "missing user id",
			mutate: func(v *models.Vault) { v.UserID = " " },
		},
		{
			name:      "unknown kdf algorithm",
			mutate:    func(v *models.Vault) { v.KDF.Algorithm = "bcrypt" },
			integrity: true,
		},
		{
			name:      "zero iterations",
			mutate:    func(v *models.Vault) { v.KDF.Iterations = 0 },
			integrity: true,
		},
		{
			name:      "wrong question count",
			mutate:    func(v *models.Vault) { v.SecurityQuestions = []string{"q1"} },
			integrity: true,
		},
		{
			name:      "salt not hex",
			mutate:    func(v *models.Vault) { v.Salts.Security = "xyz" },
			integrity: true,
		},
		{
			name:      "salt too short",
			mutate:    func(v *models.Vault) { v.Salts.Recovery = "00ff" },
			integrity: true,
		},
		{
			name:      "empty wrap",
			mutate:    func(v *models.Vault) { v.Wraps.ByRecovery = "" },
			integrity: true,
		},
		{
			name:      "wrap not hex",
			mutate:    func(v *models.Vault) { v.Wraps.BySecurity = "not-hex!" },
			integrity: true,
		},
		{
			name:      "missing timestamps",
			mutate:    func(v *models.Vault) { v.CreatedAt = time.Time{} },
			integrity: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVault()
			tt.mutate(v)

			err := v.Validate()
			assert.Error(t, err)
			if tt.integrity {
				assert.True(t, models.IsIntegrity(err), "want IntegrityError, got %v", err)
			} else {
				assert.True(t, models.IsValidation(err), "want ValidationError, got %v", err)
			}
		})
	}
}

func TestVaultClone(t *testing.T) {
	v := validVault()
	c := v.Clone()

	c.Salts.Master = "changed"
	c.SecurityQuestions[0] = "changed"

	assert.NotEqual(t, v.Salts.Master, c.Salts.Master)
	assert.Equal(t, "q1", v.SecurityQuestions[0])
}

func TestNoteMeta(t *testing.T) {
	now := time.Now().UTC()
	n := &models.EncryptedNote{
		ID:        "n1",
		Date:      now,
		Content:   "deadbeef",
		Title:     "title",
		Mood:      "ok",
		Images:    []string{"a.jpg"},
		Tags:      "cafe01",
		CreatedAt: now,
		UpdatedAt: now,
	}

	m := n.Meta()
	assert.Equal(t, "n1", m.ID)
	assert.Equal(t, "title", m.Title)
	assert.True(t, m.HasTags)

	// Ciphertext never leaks into the metadata view.
	assert.NotContains(t, []string{m.ID, m.Title, m.Mood}, n.Content)

	// Images slice is copied.
	m.Images[0] = "mutated"
	assert.Equal(t, "a.jpg", n.Images[0])
}

func TestNoteValidate(t *testing.T) {
	now := time.Now().UTC()

	valid := &models.EncryptedNote{ID: "n1", Date: now, Content: "deadbeef"}
	assert.NoError(t, valid.Validate())

	missingID := &models.EncryptedNote{Date: now, Content: "deadbeef"}
	assert.True(t, models.IsValidation(missingID.Validate()))

	missingContent := &models.EncryptedNote{ID: "n1", Date: now}
	assert.True(t, models.IsValidation(missingContent.Validate()))

	missingDate := &models.EncryptedNote{ID: "n1", Content: "deadbeef"}
	assert.True(t, models.IsValidation(missingDate.Validate()))
}
