package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <entry-id>",
	Short: "Decrypt and print one entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

var readPassword string

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().StringVarP(&readPassword, "password", "p", "",
		"Vault password (will prompt if not provided)")
}

func runRead(cmd *cobra.Command, args []string) error {
	noteID := args[0]

	_, dk, err := unlock(readPassword)
	if err != nil {
		return err
	}
	defer zero(dk)

	entry, err := notesSvc.Read(cfg.Vault.User, noteID, dk)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(entry)
		return nil
	}

	if entry.Meta.Title != "" {
		fmt.Printf("# %s\n", entry.Meta.Title)
	}
	fmt.Printf("%s", entry.Body)
	if !strings.HasSuffix(entry.Body, "\n") {
		fmt.Println()
	}
	if len(entry.Tags) > 0 {
		fmt.Printf("\nTags: %s\n", strings.Join(entry.Tags, ", "))
	}
	return nil
}
