package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillsafe/quillsafe/internal/models"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new journal vault",
	Long: `Init creates the vault protecting your journal: it generates the
data key, wraps it under your password, your security answers and a
recovery key, and prints that recovery key exactly once. Store it
somewhere safe; it cannot be shown again.`,
	Example: `  quillsafe init
  quillsafe init --question "First pet" --question "Birth city" --question "Favorite teacher"`,
	RunE: runInit,
}

var initQuestions []string

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringArrayVarP(&initQuestions, "question", "q", nil,
		"Security question (exactly 3, repeat the flag)")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := dataStore.LoadVault(cfg.Vault.User); err == nil {
		return fmt.Errorf("vault already exists for %q", cfg.Vault.User)
	} else if !errors.Is(err, models.ErrVaultNotFound) {
		return err
	}

	questions := initQuestions
	if len(questions) == 0 {
		for i := 1; i <= models.QuestionCount; i++ {
			q, err := promptLine(fmt.Sprintf("Security question %d: ", i))
			if err != nil {
				return fmt.Errorf("read question: %w", err)
			}
			questions = append(questions, q)
		}
	}
	if len(questions) != models.QuestionCount {
		return fmt.Errorf("exactly %d security questions required, got %d",
			models.QuestionCount, len(questions))
	}

	password, err := promptPassword("Choose a password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	pairs, err := promptAnswers(questions)
	if err != nil {
		return err
	}

	result, err := vaultMgr.InitializeVault(cfg.Vault.User, password, pairs)
	if err != nil {
		return err
	}
	defer zero(result.DataKey)

	if err := dataStore.SaveVault(result.Vault); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":      true,
			"user":         cfg.Vault.User,
			"recovery_key": result.RecoveryKey,
		})
		return nil
	}

	printSuccess("Vault created for %s", cfg.Vault.User)
	printWarning("Recovery key (shown once, store it safely):")
	fmt.Println(result.RecoveryKey)
	return nil
}
