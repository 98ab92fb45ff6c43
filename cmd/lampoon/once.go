package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skitlabs/lampoon/internal/app"
	"github.com/skitlabs/lampoon/internal/config"
)

var onceCmd = &cobra.Command{
	Use:   "once [scenario]",
	Short: "Generate one scene and print it to stdout",
	Long: `Once runs a single generation outside the interactive session and prints
the normalized scene to stdout. The scenario takes the same shape the
session builds: "Characters in Setting: context".

Examples:
  lampoon once "Yukari in Dorm: discussing the morning truce"
  lampoon once "Akihiko and Mitsuru in Gym: protein budget fight"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, err := buildProvider(cfg, reg)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, provider)
	if err != nil {
		return err
	}

	loop := application.Loop()
	res, err := loop.Start(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if res.Fallback {
		// The pipeline absorbed a provider failure; a scripted caller needs
		// the non-zero exit the session never sees.
		return errors.New(res.Text)
	}

	fmt.Println(res.Text)
	return loop.Finalize()
}
