package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"promptforge/callisto/pkg/audit/retention"
	"promptforge/callisto/pkg/audit/storage"
	"promptforge/callisto/pkg/cli"
	"promptforge/callisto/pkg/registry"
	"promptforge/callisto/pkg/telemetry/metrics"
	"promptforge/callisto/pkg/validation"
)

var watchFlags struct {
	variablesFile string
	provider      string
}

var watchCmd = &cobra.Command{
	Use:   "watch <template-file>",
	Short: "Re-validate a template whenever it changes",
	Long: `Continuously validate a template file, re-running validation
whenever the template changes on disk. When a profiles file is
configured with watching enabled, profile changes also trigger
re-validation.

The command runs until interrupted (Ctrl-C).

Examples:
  # Watch a template during editing
  callisto watch template.txt --provider openai

  # Watch with declared variables
  callisto watch template.txt --variables vars.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.variablesFile, "variables", "", "YAML file declaring template variables")
	watchCmd.Flags().StringVar(&watchFlags.provider, "provider", "", "provider ID to validate compatibility against")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	templatePath := args[0]

	variables, err := loadVariables(watchFlags.variablesFile)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	var collector *metrics.Collector
	opts := []validation.Option{}
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics, nil)
		opts = append(opts, validation.WithMetrics(collector))
	}

	engine, err := validation.New(cfg, reg, opts...)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	ctx := cli.SetupSignalHandler()

	// Scheduled retention pruning runs for as long as the watch does, so
	// an audit database filled by a long editing session stays in policy.
	if cfg.Audit.Enabled && cfg.Audit.PruneSchedule != "" {
		store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Audit.Path,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
			BusyTimeout:  cfg.Audit.WriteTimeout,
		})
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer store.Close()

		pruner := retention.NewPruner(store, &retention.Config{
			RetentionDays: cfg.Audit.RetentionDays,
			PruneSchedule: cfg.Audit.PruneSchedule,
		})
		if err := pruner.Start(ctx); err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer pruner.Stop()

		if next := pruner.NextPruning(); next != nil {
			fmt.Printf("next audit pruning: %s\n", next.Format(time.RFC3339))
		}
	}

	revalidate := func(reason string) {
		template, err := os.ReadFile(templatePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read template: %v\n", err)
			return
		}

		result := engine.Validate(string(template), variables, watchFlags.provider)

		fmt.Printf("--- %s (%s)\n", time.Now().Format(time.TimeOnly), reason)
		report := validateReport{
			Template: templatePath,
			Provider: watchFlags.provider,
			Valid:    result.IsValid,
			Errors:   result.Errors,
			Warnings: result.Warnings,
		}
		if watchFlags.provider != "" {
			score := engine.Score(string(template), watchFlags.provider)
			report.Score = &score
		}
		printValidateReport(report)
		fmt.Println()
	}

	revalidate("initial")

	// Watch the profiles file for capability changes. Watch blocks until
	// the context is cancelled, so it runs alongside the template loop.
	if cfg.Profiles.Path != "" && cfg.Profiles.Watch {
		profileWatcher, err := registry.NewWatcher(reg,
			registry.DefaultWatcherConfig(cfg.Profiles.Path), slog.Default())
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		go func() {
			if err := profileWatcher.Watch(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "profiles watch error: %v\n", err)
			}
		}()
		defer profileWatcher.Stop()
	}

	// Watch the template's directory so editor rename-and-replace saves
	// are observed.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(templatePath)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return cli.NewCommandError("watch", err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			revalidate("template changed")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)

		case <-ctx.Done():
			printMetricsSummary(collector)
			fmt.Println("watch stopped")
			return nil
		}
	}
}

// printMetricsSummary prints the totals recorded over the session, sorted
// by metric name. A nil collector prints nothing.
func printMetricsSummary(collector *metrics.Collector) {
	totals := collector.Snapshot()
	if len(totals) == 0 {
		return
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("--- session metrics")
	for _, name := range names {
		fmt.Printf("  %s: %g\n", name, totals[name])
	}
}
