package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"promptforge/callisto/pkg/cli"
)

var providersFlags struct {
	format string
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage provider capability profiles",
	Long: `Inspect the provider capability profiles known to the engine.

Built-in profiles are always present; profiles loaded from the
configured profiles file are applied on top, replacing built-ins with
the same provider ID wholesale.`,
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered providers",
	RunE:  runProvidersList,
}

var providersShowCmd = &cobra.Command{
	Use:   "show <provider-id>",
	Short: "Show one provider's capability profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersShow,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersShowCmd)

	providersCmd.PersistentFlags().StringVar(&providersFlags.format, "format", "text", "output format: text, json")
}

func runProvidersList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	ids := reg.ProviderIDs()

	if cli.OutputFormat(providersFlags.format) == cli.FormatJSON {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, ids)
	}

	fmt.Printf("Registered providers (%d):\n", len(ids))
	for _, id := range ids {
		profile, _ := reg.Get(id)
		fmt.Printf("  %-16s context=%d, roles=[%s]\n",
			id, profile.MaxContextLength, strings.Join(profile.SupportedRoles, ", "))
	}
	return nil
}

func runProvidersShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	profile, ok := reg.Get(args[0])
	if !ok {
		return cli.NewCommandError("providers show",
			fmt.Errorf("no capability profile registered for provider %q", args[0]))
	}

	if cli.OutputFormat(providersFlags.format) == cli.FormatJSON {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, profile)
	}

	fmt.Printf("Provider: %s\n", profile.ProviderID)
	fmt.Printf("  Max context length:       %d\n", profile.MaxContextLength)
	fmt.Printf("  Supports system messages: %t\n", profile.SupportsSystemMessages)
	fmt.Printf("  Supports streaming:       %t\n", profile.SupportsStreaming)
	fmt.Printf("  Supports tools:           %t\n", profile.SupportsTools)
	fmt.Printf("  Variable syntax:          %s\n", profile.VariableSyntax)
	fmt.Printf("  Supported roles:          %s\n", strings.Join(profile.SupportedRoles, ", "))
	fmt.Printf("  Reserved keywords:        %s\n", strings.Join(profile.ReservedKeywords, ", "))
	return nil
}
