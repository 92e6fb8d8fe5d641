package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check security answers without unlocking",
	Long: `Verify prompts for your security answers and reports whether they
would unlock the vault. The data key is never exposed.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	v, err := dataStore.LoadVault(cfg.Vault.User)
	if err != nil {
		return err
	}

	pairs, err := promptAnswers(vaultMgr.SecurityQuestions(v))
	if err != nil {
		return err
	}

	ok := vaultMgr.VerifySecurityAnswers(v, pairs)

	if jsonOutput {
		printJSON(map[string]interface{}{"verified": ok})
	} else if ok {
		printSuccess("Answers verified")
	} else {
		printError("Answers do not match")
	}

	if !ok {
		return fmt.Errorf("verification failed")
	}
	return nil
}
