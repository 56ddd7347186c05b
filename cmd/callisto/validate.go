package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"promptforge/callisto/pkg/audit/recorder"
	"promptforge/callisto/pkg/audit/storage"
	"promptforge/callisto/pkg/cli"
	"promptforge/callisto/pkg/config"
	"promptforge/callisto/pkg/validation"
)

var validateFlags struct {
	variablesFile string
	provider      string
	format        string
}

var validateCmd = &cobra.Command{
	Use:   "validate <template-file>",
	Short: "Validate a prompt template",
	Long: `Validate a prompt template file.

The validate command runs every analyzer over the template: placeholder
syntax, variable definitions and usage, security scanning, and (when a
provider is given) provider compatibility. Findings are reported as
errors and warnings; the template is valid when it has zero errors.

Variables are declared in a YAML file:

  variables:
    - name: user_name
      type: string
      description: Name shown in the greeting
      required: true

Examples:
  # Validate syntax and security only
  callisto validate template.txt

  # Validate with declared variables
  callisto validate template.txt --variables vars.yaml

  # Validate against a provider and print the compatibility score
  callisto validate template.txt --provider openai

  # JSON output
  callisto validate template.txt --provider openai --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.variablesFile, "variables", "", "YAML file declaring template variables")
	validateCmd.Flags().StringVar(&validateFlags.provider, "provider", "", "provider ID to validate compatibility against")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validateReport is the JSON shape of a validation verdict.
type validateReport struct {
	Template string               `json:"template"`
	Provider string               `json:"provider,omitempty"`
	Valid    bool                 `json:"valid"`
	Score    *int                 `json:"score,omitempty"`
	Errors   []validation.Finding `json:"errors"`
	Warnings []validation.Finding `json:"warnings"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	template, err := os.ReadFile(args[0])
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("failed to read template: %w", err))
	}

	variables, err := loadVariables(validateFlags.variablesFile)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	engine, err := validation.New(cfg, reg)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	result := engine.Validate(string(template), variables, validateFlags.provider)

	report := validateReport{
		Template: args[0],
		Provider: validateFlags.provider,
		Valid:    result.IsValid,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}

	score := -1
	if validateFlags.provider != "" {
		score = engine.Score(string(template), validateFlags.provider)
		report.Score = &score
	}

	if cfg.Audit.Enabled {
		if err := recordAudit(cfg, string(template), validateFlags.provider, result, score); err != nil {
			// Audit failures never fail the validation itself.
			fmt.Fprintf(os.Stderr, "warning: audit recording failed: %v\n", err)
		}
	}

	if cli.OutputFormat(validateFlags.format) == cli.FormatJSON {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, report); err != nil {
			return cli.NewCommandError("validate", err)
		}
	} else {
		printValidateReport(report)
	}

	if !result.IsValid {
		os.Exit(1)
	}
	return nil
}

// printValidateReport prints a human-readable validation report.
func printValidateReport(report validateReport) {
	if report.Valid {
		fmt.Printf("✓ %s is valid\n", report.Template)
	} else {
		fmt.Printf("✗ %s is invalid\n", report.Template)
	}

	if report.Score != nil {
		fmt.Printf("Compatibility score (%s): %d/100\n", report.Provider, *report.Score)
	}

	if len(report.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(report.Errors))
		for _, f := range report.Errors {
			printFinding(f)
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(report.Warnings))
		for _, f := range report.Warnings {
			printFinding(f)
		}
	}
}

// printFinding prints one finding with its position and suggestion when
// present.
func printFinding(f validation.Finding) {
	if f.Line > 0 {
		fmt.Printf("  [%s] line %d, col %d: %s\n", f.Kind, f.Line, f.Column, f.Message)
	} else {
		fmt.Printf("  [%s] %s\n", f.Kind, f.Message)
	}
	if f.Suggestion != "" {
		fmt.Printf("      suggestion: %s\n", f.Suggestion)
	}
}

// variablesFile is the YAML shape of a variable declaration file.
type variablesFile struct {
	Variables []validation.Variable `yaml:"variables"`
}

// loadVariables reads variable declarations from a YAML file. An empty
// path yields no variables.
func loadVariables(path string) ([]validation.Variable, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file: %w", err)
	}

	var file variablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse variables file: %w", err)
	}

	return file.Variables, nil
}

// recordAudit writes one audit record for the validation verdict.
func recordAudit(cfg *config.Config, template, provider string, result validation.ValidationResult, score int) error {
	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Audit.Path,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  cfg.Audit.WriteTimeout,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	rec := recorder.NewRecorder(store, &recorder.Config{
		Enabled:      true,
		AsyncBuffer:  cfg.Audit.AsyncBuffer,
		WriteTimeout: cfg.Audit.WriteTimeout,
	})
	defer rec.Close()

	return rec.Record(template, provider, result, score)
}
