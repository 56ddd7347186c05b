// Package cli provides shared helpers for the callisto command-line
// interface: output formatting, signal handling, and command error
// types.
//
// # Output Formats
//
// Commands support text (default) and JSON output:
//
//	formatter := cli.NewFormatter(cli.FormatJSON)
//	formatter.FormatTo(os.Stdout, report)
//
// # Signal Handling
//
// Long-running commands use SetupSignalHandler to obtain a context
// cancelled on SIGINT or SIGTERM:
//
//	ctx := cli.SetupSignalHandler()
//	rankings, err := engine.CompareProviders(ctx, ...)
package cli
