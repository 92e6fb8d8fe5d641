package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the vault password",
	Long: `Passwd unlocks the vault with your current password and rewraps
the data key under a new one. Security answers and the recovery key are
untouched; no journal content is re-encrypted.`,
	RunE: runPasswd,
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}

func runPasswd(cmd *cobra.Command, args []string) error {
	current, err := promptPassword("Current password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	v, dk, err := unlock(current)
	if err != nil {
		return err
	}
	defer zero(dk)

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

	newVault, err := vaultMgr.RebuildWithNewPassword(v, dk, newPassword)
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

	printSuccess("Password changed")
	return nil
}
