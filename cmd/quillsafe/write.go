package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillsafe/quillsafe/internal/models"
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a new journal entry",
	Long: `Write encrypts a new entry under your data key. The body is read
from --message or from stdin. Title, mood and date stay plaintext so
entries can be listed without unlocking.`,
	Example: `  quillsafe write --title "Monday" --mood calm --message "Slow day."
  echo "Long entry text" | quillsafe write --tags travel,notes`,
	RunE: runWrite,
}

var (
	writeTitle    string
	writeMood     string
	writeMessage  string
	writeDate     string
	writeTags     []string
	writeImages   []string
	writePassword string
)

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().StringVarP(&writeTitle, "title", "t", "", "Entry title (plaintext)")
	writeCmd.Flags().StringVar(&writeMood, "mood", "", "Mood label (plaintext)")
	writeCmd.Flags().StringVarP(&writeMessage, "message", "m", "",
		"Entry body (reads stdin if omitted)")
	writeCmd.Flags().StringVar(&writeDate, "date", "", "Entry date (YYYY-MM-DD, default today)")
	writeCmd.Flags().StringSliceVar(&writeTags, "tags", nil, "Tags (encrypted)")
	writeCmd.Flags().StringSliceVar(&writeImages, "image", nil, "Image references (plaintext)")
	writeCmd.Flags().StringVarP(&writePassword, "password", "p", "",
		"Vault password (will prompt if not provided)")
}

func runWrite(cmd *cobra.Command, args []string) error {
	body := writeMessage
	if body == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read entry body: %w", err)
		}
		body = string(data)
	}
	if body == "" {
		return fmt.Errorf("entry body is empty")
	}

	var date time.Time
	if writeDate != "" {
		var err error
		date, err = time.Parse("2006-01-02", writeDate)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	_, dk, err := unlock(writePassword)
	if err != nil {
		return err
	}
	defer zero(dk)

	note, err := notesSvc.Create(cfg.Vault.User, dk, models.NoteDraft{
		Date:   date,
		Body:   body,
		Title:  writeTitle,
		Mood:   writeMood,
		Images: writeImages,
		Tags:   writeTags,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": true,
			"id":      note.ID,
			"date":    note.Date,
		})
		return nil
	}

	printSuccess("Entry saved: %s", note.ID)
	return nil
}
