// Package main provides the CLI entry point for winup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"winup/internal/config"
	"winup/internal/history"
	"winup/internal/tui"
	"winup/internal/winget"
)

var version = "dev"

var (
	wingetPath   string // Override from --winget flag
	verbose      bool
	historyLimit int
	logFile      *os.File
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "winup",
		Version: version,
		Short:   "Review and apply winget upgrades from the terminal",
		Long: `winup lists the applications winget reports as upgradable, lets you
select a subset, and applies the upgrades one at a time, classifying each
outcome (updated, failed, needs the app closed, already up to date).

Optional configuration lives in ~/.config/winup/config.yaml. Completed
runs are recorded in a local history database.

Run without arguments to start the interactive TUI.`,
		RunE: runInteractive,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if verbose {
				logWriter := os.Stderr
				// When running interactively (TUI), write logs to a file to avoid corrupting the display
				if tui.IsTerminal() {
					logPath := filepath.Join(os.TempDir(), "winup.log")
					f, err := os.Create(logPath)
					if err == nil {
						logFile = f
						logWriter = f
						fmt.Fprintf(os.Stderr, "Verbose logs: %s\n", logPath)
					}
				}
				slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logFile != nil {
				_ = logFile.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&wingetPath, "winget", "w", "", "Override the winget binary path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List updatable applications",
		Long:  `Print the applications winget reports as upgradable, one per line.`,
		RunE:  runList,
	}

	upgradeCmd := &cobra.Command{
		Use:   "upgrade [ids...]",
		Short: "Upgrade applications without the TUI",
		Long: `Upgrade the given package IDs sequentially and print a categorized report.
With no IDs, every updatable application is upgraded. Ctrl-C cancels at
the next item boundary; completed items stay recorded.`,
		RunE: runUpgrade,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent upgrade runs",
		Long:  `Display recorded upgrade runs and their per-item outcomes, newest first.`,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 5, "Number of runs to show")

	rootCmd.AddCommand(listCmd, upgradeCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if wingetPath != "" {
		cfg.WingetPath = wingetPath
	}

	return cfg, nil
}

func newClient(cfg *config.Config) (*winget.Client, error) {
	client := winget.NewClient(cfg.WingetPath, cfg.Patterns, nil)
	if err := client.Check(); err != nil {
		return nil, err
	}

	return client, nil
}

func runInteractive(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !tui.IsTerminal() {
		return fmt.Errorf("interactive mode requires a terminal; use subcommands (list, upgrade, history) for non-interactive use")
	}

	return tui.Run(cfg)
}

func runList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	apps, err := runListingWithCancellation(client)
	if err != nil {
		return err
	}

	if len(apps) == 0 {
		fmt.Println("No updates available")
		return nil
	}

	fmt.Printf("%-36s %-36s %-18s %s\n", "Name", "Id", "Version", "Available")
	for _, app := range apps {
		fmt.Printf("%-36s %-36s %-18s %s\n", app.Name, app.ID, app.Version, app.Available)
	}
	fmt.Printf("\n%d update(s) available\n", len(apps))

	return nil
}

func runListingWithCancellation(client *winget.Client) ([]winget.UpdatableApp, error) {
	var apps []winget.UpdatableApp

	err := runWithCancellation(func(ctx context.Context) error {
		var err error
		apps, err = client.ListUpdatable(ctx)
		return err
	})

	return apps, err
}

func runUpgrade(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	apps, err := runListingWithCancellation(client)
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		for _, app := range apps {
			ids = append(ids, app.ID)
		}
	}

	if len(ids) == 0 {
		fmt.Println("No updates available")
		return nil
	}

	startedAt := time.Now()

	var entries []winget.ReportEntry

	err = runWithCancellation(func(ctx context.Context) error {
		// Strictly one upgrade at a time; cancellation lands between items
		for _, id := range ids {
			if ctx.Err() != nil {
				fmt.Printf("Cancelled: %d of %d item(s) were not attempted\n", len(ids)-len(entries), len(ids))
				break
			}

			fmt.Printf("Updating %s...\n", id)

			result := client.Upgrade(ctx, id)
			entries = append(entries, winget.ReportEntry{ID: id, Result: result})
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordRun(cfg, apps, entries, startedAt)

	fmt.Print("\n" + winget.FormatReport(entries))

	failed := 0
	for _, e := range entries {
		if e.Result.Outcome == winget.OutcomeFailure {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d upgrade(s) failed", failed)
	}

	return nil
}

// recordRun persists a completed batch; history problems only warn.
func recordRun(cfg *config.Config, apps []winget.UpdatableApp, entries []winget.ReportEntry, startedAt time.Time) {
	if len(entries) == 0 {
		return
	}

	path, err := cfg.ResolveHistoryPath()
	if err != nil {
		slog.Warn("resolving history path", slog.String("error", err.Error()))
		return
	}

	store, err := history.Open(path)
	if err != nil {
		slog.Warn("opening history store", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.RecordRun(startedAt, history.BuildItems(apps, entries)); err != nil {
		slog.Warn("recording upgrade run", slog.String("error", err.Error()))
		return
	}

	if err := store.Prune(cfg.KeepRuns); err != nil {
		slog.Warn("pruning upgrade history", slog.String("error", err.Error()))
	}
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := cfg.ResolveHistoryPath()
	if err != nil {
		return err
	}

	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer func() { _ = store.Close() }()

	runs, err := store.RecentRuns(historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("Run %d — %s: %d processed, %d updated, %d failed, %d need closing, %d already up to date\n",
			run.ID, run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Total, run.Succeeded, run.Failed, run.NeedClose, run.UpToDate)

		items, err := store.Items(run.ID)
		if err != nil {
			return err
		}

		for _, it := range items {
			fmt.Printf("  %s %s: %s\n", markerForOutcome(it.Outcome), it.AppID, it.Message)
		}

		fmt.Println()
	}

	return nil
}

func markerForOutcome(outcome string) string {
	for _, o := range []winget.Outcome{
		winget.OutcomeSuccess,
		winget.OutcomeFailure,
		winget.OutcomeNeedsClosed,
		winget.OutcomeUpToDate,
	} {
		if o.String() == outcome {
			return winget.Marker(o)
		}
	}

	return "[?]"
}

// runWithCancellation runs a context-aware function with signal-based cancellation.
// It sets up SIGINT/SIGTERM handling and cancels the context when a signal is received.
func runWithCancellation(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		fmt.Println("\nOperation canceled by user")
		cancel()
	}()

	return fn(ctx)
}
