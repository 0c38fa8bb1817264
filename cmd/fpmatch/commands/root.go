// Package commands provides the CLI commands for the fpmatch tool.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

// Version information, may be set at build time.
var Version = "dev"

// traceKeys are the tracers of the matching packages.
var traceKeys = []string{
	"fpmatch", "fpmatch.access", "fpmatch.bind", "fpmatch.compile",
	"fpmatch.pattern", "fpmatch.regex",
}

// NewRootCommand creates the fpmatch command with all of its subcommands.
func NewRootCommand() *cobra.Command {
	var traceLevel string
	root := &cobra.Command{
		Use:   "fpmatch",
		Short: "Structural pattern matching of values against case tables",
		Long: `fpmatch matches a value against an ordered table of cases and prints
the result of the first case which applies.

Case tables are YAML documents:

  binds: [n]
  cases:
    - when: [0]
      then: zero
    - when: [["h", "*m", "t"]]
      if: [{equal: [h, t]}]
      then: {continue: m}
      else: false
    - default: true
      then: other

Usage:
  fpmatch match -c table.yaml -v '[1, 2, 1]'
  fpmatch match -c table.yaml -v 8 --explain
  fpmatch version`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setTraceLevel(traceLevel)
		},
	}
	root.PersistentFlags().StringVarP(&traceLevel, "trace", "t", "error", "Trace level (error, info, debug)")
	root.AddCommand(newMatchCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version of fpmatch",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fpmatch version %s\n", Version)
		},
	})
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setTraceLevel(level string) error {
	var l tracing.TraceLevel
	switch strings.ToLower(level) {
	case "error", "":
		l = tracing.LevelError
	case "info":
		l = tracing.LevelInfo
	case "debug":
		l = tracing.LevelDebug
	default:
		return fmt.Errorf("unknown trace level %q", level)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
	return nil
}
