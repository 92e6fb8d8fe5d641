package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Decrypt all entries to JSON",
	Long: `Export unlocks the vault and writes every entry, decrypted, as a
JSON array. The output contains your plaintext journal; treat the file
accordingly.`,
	Example: `  quillsafe export --out journal.json`,
	RunE:    runExport,
}

var (
	exportOut      string
	exportPassword string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "",
		"Output file (default stdout)")
	exportCmd.Flags().StringVarP(&exportPassword, "password", "p", "",
		"Vault password (will prompt if not provided)")
}

func runExport(cmd *cobra.Command, args []string) error {
	_, dk, err := unlock(exportPassword)
	if err != nil {
		return err
	}
	defer zero(dk)

	entries, err := notesSvc.Export(cfg.Vault.User, dk)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(exportOut, data, 0600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	printSuccess("Exported %d entries to %s", len(entries), exportOut)
	return nil
}
