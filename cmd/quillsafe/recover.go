package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Reset the password with a recovery key",
	Long: `Recover unlocks the vault with the one-time recovery key, sets a
new password, and prints a brand-new recovery key. The consumed key is
invalidated; journal content is untouched.`,
	RunE: runRecover,
}

var recoverKey string

func init() {
	rootCmd.AddCommand(recoverCmd)

	recoverCmd.Flags().StringVarP(&recoverKey, "key", "k", "",
		"Recovery key (will prompt if not provided)")
}

func runRecover(cmd *cobra.Command, args []string) error {
	v, err := dataStore.LoadVault(cfg.Vault.User)
	if err != nil {
		return err
	}

	key := recoverKey
	if key == "" {
		key, err = promptPassword("Recovery key: ")
		if err != nil {
			return fmt.Errorf("read recovery key: %w", err)
		}
	}

	newPassword, err := promptPassword("New password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if newPassword != confirm {
		return fmt.Errorf("passwords do not match")
	}

	result, err := vaultMgr.RecoverAndReset(v, key, newPassword)
	if err != nil {
		return err
	}

	if err := dataStore.SaveVault(result.Vault); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":      true,
			"recovery_key": result.RecoveryKey,
		})
		return nil
	}

	printSuccess("Password reset")
	printWarning("New recovery key (shown once, store it safely):")
	fmt.Println(result.RecoveryKey)
	return nil
}
