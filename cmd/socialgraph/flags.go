package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/socialgraph/cmd/socialgraph/internal"
)

// GlobalFlags holds global flags available to all commands
type GlobalFlags struct {
	Verbose      bool
	Quiet        bool
	OutputFormat string
	LogFormat    string
	ConfigFile   string
	URI          string
	Username     string
	Database     string
}

var globalFlags = &GlobalFlags{}

// RegisterGlobalFlags registers persistent flags on the root command.
// Passwords are never accepted as flags; they come from config or environment.
func RegisterGlobalFlags(cmd *cobra.Command) {
	globalFlags = &GlobalFlags{}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Only log errors")
	pf.StringVarP(&globalFlags.OutputFormat, "output", "o", "text", "Output format (text|json)")
	pf.StringVar(&globalFlags.LogFormat, "log-format", "", "Log format (auto|text|json), overrides config")
	pf.StringVar(&globalFlags.ConfigFile, "config", "", "Path to config file (default: ~/.socialgraph/config.yaml)")
	pf.StringVar(&globalFlags.URI, "uri", "", "Neo4j connection URI, overrides config")
	pf.StringVar(&globalFlags.Username, "username", "", "Neo4j username, overrides config")
	pf.StringVar(&globalFlags.Database, "database", "", "Neo4j database name, overrides config")
}

// ParseGlobalFlags validates global flags from the command
func ParseGlobalFlags(cmd *cobra.Command) (*GlobalFlags, error) {
	format := globalFlags.OutputFormat
	if format != string(internal.FormatText) && format != string(internal.FormatJSON) {
		return nil, internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("invalid --output %q (want text or json)", format))
	}

	switch globalFlags.LogFormat {
	case "", "auto", "text", "json":
	default:
		return nil, internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("invalid --log-format %q (want auto, text or json)", globalFlags.LogFormat))
	}

	if globalFlags.Verbose && globalFlags.Quiet {
		return nil, internal.NewCLIError(internal.ExitError, "--verbose and --quiet cannot be used together")
	}

	return globalFlags, nil
}

// GetOutputFormat returns the parsed OutputFormat enum
func (f *GlobalFlags) GetOutputFormat() internal.OutputFormat {
	if f.OutputFormat == string(internal.FormatJSON) {
		return internal.FormatJSON
	}
	return internal.FormatText
}

// IsVerbose returns true if verbose mode is enabled
func (f *GlobalFlags) IsVerbose() bool {
	return f.Verbose && !f.Quiet
}

// IsQuiet returns true if quiet mode is enabled
func (f *GlobalFlags) IsQuiet() bool {
	return f.Quiet
}
