// Command lampoon is the parody scene generator CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/skitlabs/lampoon/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lampoon",
	Short: "Lampoon - parody scene generator",
	Long: `Lampoon turns a one-line scenario into a parody scene written in the voice
of the configured series.

It extracts character names from the scenario, selects weighted trait tags
for each, retrieves matching script lines from the corpus, and sends the
composed prompt to the configured LLM backend. Scenes can be refined
interactively; every accepted version is appended to a plain-text archive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
}

func main() {
	// Load .env if present so ${VAR} references in the config resolve.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lampoon: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the file behind --config, mapping a missing file to a
// friendlier message.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %q not found — copy configs/example.yaml to get started", configPath)
	}
	return cfg, err
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
