package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quillsafe/quillsafe/internal/config"
	"github.com/quillsafe/quillsafe/internal/crypto"
	"github.com/quillsafe/quillsafe/internal/events"
	"github.com/quillsafe/quillsafe/internal/models"
	"github.com/quillsafe/quillsafe/internal/notes"
	"github.com/quillsafe/quillsafe/internal/store"
	"github.com/quillsafe/quillsafe/internal/vault"
)

var rootCmd = &cobra.Command{
	Use:   "quillsafe",
	Short: "Encrypted personal journal",
	Long: `Quillsafe keeps a personal journal whose entries are unreadable
without your credential. A single data key protects all content and can
be unlocked with your password, your security answers, or a one-time
recovery key.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dataStore != nil {
			_ = dataStore.Close()
		}
	},
}

var (
	configPath string
	jsonOutput bool
	verbose    bool

	cfg       *config.Config
	logger    *events.Logger
	dataStore store.Store
	vaultMgr  *vault.Manager
	notesSvc  *notes.Service
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}

// setup wires config, logger, store and services for every command.
func setup() error {
	var err error
	cfg, err = config.NewLoader(configPath).Load()
	if err != nil {
		return err
	}

	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err = events.NewLogger(&events.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	switch cfg.Storage.Driver {
	case store.DriverJSON:
		dataStore, err = store.NewJSONStore(cfg.Storage.DataDir, logger)
	default:
		dataStore, err = store.NewSQLiteStore(cfg.DatabasePath(), logger)
	}
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	provider := crypto.NewProvider()
	vaultMgr = vault.NewManagerWithIterations(provider, logger, cfg.Vault.KDFIterations)
	notesSvc = notes.NewService(provider, dataStore, logger)

	return nil
}

// unlock loads the vault and opens it with a prompted (or supplied)
// password. The returned data key belongs to the caller, who must zero
// it before exiting.
func unlock(password string) (*models.Vault, []byte, error) {
	v, err := dataStore.LoadVault(cfg.Vault.User)
	if err != nil {
		return nil, nil, err
	}

	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return nil, nil, fmt.Errorf("read password: %w", err)
		}
	}

	dk, err := vaultMgr.UnlockWithPassword(v, password)
	if err != nil {
		return nil, nil, err
	}

	return v, dk, nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	// Read password without echo
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}

	return string(password), nil
}

// stdin is shared across prompts so consecutive reads do not drop
// buffered input. Tests swap it out.
var stdin = bufio.NewReader(os.Stdin)

// promptLine reads one full line, spaces included. Security questions
// are free text; a trailing newline is not required on the last line.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptAnswers collects one answer per question, in order, without
// echo. Answers are credentials, not content.
func promptAnswers(questions []string) ([]models.QAPair, error) {
	pairs := make([]models.QAPair, 0, len(questions))
	for _, q := range questions {
		answer, err := promptPassword(fmt.Sprintf("Answer for %q: ", q))
		if err != nil {
			return nil, fmt.Errorf("read answer: %w", err)
		}
		pairs = append(pairs, models.QAPair{QuestionID: q, Answer: answer})
	}
	return pairs, nil
}

// zero drops key material once a command is done with it.
func zero(key []byte) {
	crypto.Zero(key)
}

// Output helpers

func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(os.Stderr, format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		printError("Encode JSON: %v", err)
		return
	}
	fmt.Println(string(data))
}
