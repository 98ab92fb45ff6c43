package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/skitlabs/lampoon/internal/archive"
	"github.com/skitlabs/lampoon/internal/corpus"
	"github.com/skitlabs/lampoon/internal/pattern"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and data files",
	Long: `Validate loads the configuration, the pattern document and the script
corpus, prints what it found, and exits non-zero when the configuration or
the pattern document is unusable. Missing data files are reported but do
not fail validation: the pipeline runs degraded without them.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	fmt.Printf("✓ config: provider %s / %s\n", cfg.Provider.Name, cfg.Provider.Model)

	store, err := pattern.Load(cfg.Patterns.Path)
	if err != nil {
		return err
	}
	fmt.Printf("✓ patterns: %d characters\n", len(store.Roster()))

	c := corpus.Load(corpus.LoadConfig{
		ScriptPath:     cfg.Corpus.ScriptPath,
		SupplementPath: cfg.Corpus.SupplementPath,
		EpisodeWeight:  cfg.Corpus.ReplicationWeight(),
	})
	fmt.Printf("✓ corpus: %d lines\n", c.Len())

	if cfg.Archive.Path != "" {
		if err := archive.NewStore(cfg.Archive.Path).Check(); err != nil {
			return err
		}
		fmt.Printf("✓ archive: %s\n", cfg.Archive.Path)
	} else {
		fmt.Println("  archive: (disabled)")
	}
	return nil
}
