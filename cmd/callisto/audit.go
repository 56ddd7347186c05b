package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"promptforge/callisto/pkg/audit"
	"promptforge/callisto/pkg/audit/retention"
	"promptforge/callisto/pkg/audit/storage"
	"promptforge/callisto/pkg/cli"
)

var auditFlags struct {
	timeRange    string
	provider     string
	templateHash string
	limit        int
	format       string
}

var auditPruneFlags struct {
	retentionDays int
	dryRun        bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the validation audit trail",
	Long: `Query and maintain the validation audit database.

Audit records capture validation verdicts: the template's SHA-256 hash,
the provider validated against, validity, finding counts, and score.`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records from the configured database.

Examples:
  # Most recent records
  callisto audit query

  # Records for one provider in a time range
  callisto audit query --provider openai \
    --time-range "2026-08-01T00:00:00Z/2026-08-30T00:00:00Z"

  # All verdicts for one template
  callisto audit query --template-hash <sha256>`,
	RunE: runAuditQuery,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit records past the retention period",
	RunE:  runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd)
	auditCmd.AddCommand(auditPruneCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval start/end)")
	auditQueryCmd.Flags().StringVar(&auditFlags.provider, "provider", "", "filter by provider ID")
	auditQueryCmd.Flags().StringVar(&auditFlags.templateHash, "template-hash", "", "filter by template hash")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "maximum records to return")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")

	auditPruneCmd.Flags().IntVar(&auditPruneFlags.retentionDays, "retention-days", 0, "retention period override (default: configured value)")
	auditPruneCmd.Flags().BoolVar(&auditPruneFlags.dryRun, "dry-run", false, "report what would be deleted without deleting")
}

// openAuditStorage opens the configured audit database.
func openAuditStorage() (audit.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Audit.Path,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  cfg.Audit.WriteTimeout,
	})
	if err != nil {
		return nil, cli.NewCommandError("audit", err)
	}
	return store, nil
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	query := &audit.Query{
		Provider:     auditFlags.provider,
		TemplateHash: auditFlags.templateHash,
		Limit:        auditFlags.limit,
	}

	if auditFlags.timeRange != "" {
		parts := strings.Split(auditFlags.timeRange, "/")
		if len(parts) != 2 {
			return fmt.Errorf("invalid time range format (expected: start/end)")
		}
		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		query.StartTime = &startTime
		query.EndTime = &endTime
	}

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	if cli.OutputFormat(auditFlags.format) == cli.FormatJSON {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("No audit records found.")
		return nil
	}

	fmt.Printf("Audit records (%d):\n", len(records))
	for _, r := range records {
		verdict := "valid"
		if !r.Valid {
			verdict = "invalid"
		}
		fmt.Printf("  %s  %s  %-8s errors=%d warnings=%d",
			r.Timestamp.Format(time.RFC3339), r.ID, verdict,
			r.ErrorCount, r.WarningCount)
		if r.Provider != "" {
			fmt.Printf(" provider=%s score=%d", r.Provider, r.Score)
		}
		fmt.Println()
	}
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Audit.Path,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  cfg.Audit.WriteTimeout,
	})
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	defer store.Close()

	retentionDays := cfg.Audit.RetentionDays
	if auditPruneFlags.retentionDays > 0 {
		retentionDays = auditPruneFlags.retentionDays
	}
	if retentionDays <= 0 {
		return fmt.Errorf("retention period not configured (set audit.retention_days or --retention-days)")
	}

	ctx := context.Background()

	if auditPruneFlags.dryRun {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		count, err := store.Count(ctx, &audit.Query{EndTime: &cutoff})
		if err != nil {
			return cli.NewCommandError("audit prune", err)
		}
		fmt.Printf("Would delete %d records older than %d days\n", count, retentionDays)
		return nil
	}

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: retentionDays,
	})

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}

	fmt.Printf("Deleted %d records older than %d days\n", deleted, retentionDays)
	return nil
}
