package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillsafe/quillsafe/internal/models"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Show or rotate security questions",
	Long: `Without flags, questions prints the recorded question list in the
order answers must be supplied. With --rotate it unlocks the vault and
replaces questions and answers; password and recovery key are untouched.`,
	RunE: runQuestions,
}

var (
	questionsRotate   bool
	questionsNew      []string
	questionsPassword string
)

func init() {
	rootCmd.AddCommand(questionsCmd)

	questionsCmd.Flags().BoolVar(&questionsRotate, "rotate", false,
		"Replace security questions and answers")
	questionsCmd.Flags().StringArrayVarP(&questionsNew, "question", "q", nil,
		"New security question (exactly 3, repeat the flag)")
	questionsCmd.Flags().StringVarP(&questionsPassword, "password", "p", "",
		"Vault password (will prompt if not provided)")
}

func runQuestions(cmd *cobra.Command, args []string) error {
	if !questionsRotate {
		v, err := dataStore.LoadVault(cfg.Vault.User)
		if err != nil {
			return err
		}

		questions := vaultMgr.SecurityQuestions(v)
		if jsonOutput {
			printJSON(questions)
			return nil
		}
		for i, q := range questions {
			fmt.Printf("%d. %s\n", i+1, q)
		}
		return nil
	}

	questions := questionsNew
	if len(questions) == 0 {
		for i := 1; i <= models.QuestionCount; i++ {
			q, err := promptLine(fmt.Sprintf("New security question %d: ", i))
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

	v, dk, err := unlock(questionsPassword)
	if err != nil {
		return err
	}
	defer zero(dk)

	pairs, err := promptAnswers(questions)
	if err != nil {
		return err
	}

	newVault, err := vaultMgr.RebuildWithNewSecurityAnswers(v, dk, pairs)
	if err != nil {
		return err
	}

	if err := dataStore.SaveVault(newVault); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"success": true})
		return nil
	}

	printSuccess("Security questions rotated")
	return nil
}
