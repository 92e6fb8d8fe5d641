package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries without decrypting",
	Long: `List shows entry metadata (date, title, mood) newest first. Only
plaintext fields are read, so no password is needed.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	metas, err := notesSvc.List(cfg.Vault.User)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(metas)
		return nil
	}

	if len(metas) == 0 {
		printInfo("No entries yet.")
		return nil
	}

	for _, m := range metas {
		line := fmt.Sprintf("%s  %s", m.Date.Format("2006-01-02"), m.ID)
		if m.Title != "" {
			line += "  " + m.Title
		}
		if m.Mood != "" {
			line += fmt.Sprintf("  (%s)", m.Mood)
		}
		fmt.Println(line)
	}
	return nil
}
