package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/skitlabs/lampoon/internal/app"
	"github.com/skitlabs/lampoon/internal/archive"
	"github.com/skitlabs/lampoon/internal/config"
	"github.com/skitlabs/lampoon/internal/observe"
	"github.com/skitlabs/lampoon/internal/prompt"
	"github.com/skitlabs/lampoon/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive scene session",
	Long: `Run starts the interactive loop: enter a scenario, read the generated
scene, then refine it, start over, or exit. Accepted scenes are appended to
the configured archive file as you go.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry providers: Prometheus exporter bridge plus tracing.
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "lampoon"})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

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

	printStartupSummary(cfg, application)

	sess, err := session.New(session.Config{
		Loop:   application.Loop(),
		Series: cfg.Series,
		Roster: application.Patterns().Roster(),
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if addr := cfg.Server.MetricsAddr; addr != "" {
		srv := observe.NewServer(addr, readinessChecks(cfg)...)
		g.Go(func() error {
			slog.Info("metrics listener started", "addr", addr)
			return srv.Run(gctx)
		})
	}

	g.Go(func() error {
		// The listener only stops when the signal context ends, so a session
		// that finishes on its own has to end it too.
		defer stop()
		return sess.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// readinessChecks builds the /readyz probes for the metrics listener. The
// archive is the one dependency that can break while a session runs; data
// files are read once at startup and the provider is exercised per request.
func readinessChecks(cfg *config.Config) []observe.Checker {
	var checks []observe.Checker
	if cfg.Archive.Path != "" {
		store := archive.NewStore(cfg.Archive.Path)
		checks = append(checks, observe.Checker{
			Name:  "archive",
			Check: func(_ context.Context) error { return store.Check() },
		})
	}
	return checks
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, a *app.App) {
	series := cfg.Series
	if series == "" {
		series = prompt.DefaultSeries
	}

	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         Lampoon — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("Provider", cfg.Provider.Name+" / "+cfg.Provider.Model)
	printRow("Series", series)
	printRow("Characters", strconv.Itoa(len(a.Patterns().Roster())))
	printRow("Corpus lines", strconv.Itoa(a.Corpus().Len()))
	printRow("Archive", orDisabled(cfg.Archive.Path))
	printRow("Metrics", orDisabled(cfg.Server.MetricsAddr))
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printRow(label, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", label, value)
}

func orDisabled(v string) string {
	if v == "" {
		return "(disabled)"
	}
	return v
}
