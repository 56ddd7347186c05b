package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"promptforge/callisto/pkg/cli"
	"promptforge/callisto/pkg/validation"
)

var compareFlags struct {
	providers    []string
	probeTimeout time.Duration
	noProbe      bool
	format       string
}

var compareCmd = &cobra.Command{
	Use:   "compare <template-file>",
	Short: "Rank providers for a prompt template",
	Long: `Rank candidate providers by compatibility score for a template.

The compare command validates the template against every candidate
provider concurrently, probes each provider, and prints a ranking
sorted by score descending. Ties keep the order providers were given.

Probing uses a local simulated prober: a provider passes its probe when
a capability profile is registered for it. A failed probe lowers the
provider's score but never fails the comparison.

Examples:
  # Rank the default providers
  callisto compare template.txt

  # Rank a specific set
  callisto compare template.txt --providers openai,anthropic,meta

  # Skip probing
  callisto compare template.txt --no-probe

  # JSON output
  callisto compare template.txt --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringSliceVar(&compareFlags.providers, "providers", nil, "provider IDs to compare (default: configured allowed providers)")
	compareCmd.Flags().DurationVar(&compareFlags.probeTimeout, "probe-timeout", 0, "per-probe timeout (default: configured probe timeout)")
	compareCmd.Flags().BoolVar(&compareFlags.noProbe, "no-probe", false, "skip provider probing")
	compareCmd.Flags().StringVar(&compareFlags.format, "format", "text", "output format: text, json")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	template, err := os.ReadFile(args[0])
	if err != nil {
		return cli.NewCommandError("compare", fmt.Errorf("failed to read template: %w", err))
	}

	providers := compareFlags.providers
	if len(providers) == 0 {
		providers = cfg.Validation.AllowedProviders
	}
	if compareFlags.probeTimeout > 0 {
		cfg.Validation.ProbeTimeout = compareFlags.probeTimeout
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	engine, err := validation.New(cfg, reg)
	if err != nil {
		return cli.NewCommandError("compare", err)
	}

	var prober validation.Prober
	if !compareFlags.noProbe {
		// Simulated prober: a provider is reachable when a capability
		// profile is registered for it.
		prober = validation.ProberFunc(func(ctx context.Context, providerID string) validation.ProbeResult {
			start := time.Now()
			_, ok := reg.Get(providerID)
			result := validation.ProbeResult{
				Success:  ok,
				Duration: time.Since(start),
			}
			if !ok {
				result.Error = fmt.Sprintf("no capability profile registered for provider %q", providerID)
			}
			return result
		})
	}

	ctx := cli.SetupSignalHandler()
	rankings, err := engine.CompareProviders(ctx, string(template), providers, prober)
	if err != nil {
		return cli.NewCommandError("compare", err)
	}

	if cli.OutputFormat(compareFlags.format) == cli.FormatJSON {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, rankings); err != nil {
			return cli.NewCommandError("compare", err)
		}
		return nil
	}

	printRankings(args[0], rankings)
	return nil
}

// printRankings prints a human-readable provider ranking.
func printRankings(template string, rankings []validation.ProviderRanking) {
	fmt.Printf("Provider ranking for %s:\n\n", template)

	for i, r := range rankings {
		status := "✓"
		if !r.Result.IsValid {
			status = "✗"
		}
		fmt.Printf("%d. %s %s: %d/100 (%d errors, %d warnings",
			i+1, status, r.ProviderID, r.Score,
			len(r.Result.Errors), len(r.Result.Warnings))
		if !r.Probe.Success {
			fmt.Printf(", probe failed")
		}
		fmt.Println(")")
	}
}
