package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the entry point when srvsync is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "srvsync",
	Short: "Keep HAProxy configuration in sync with DNS SRV discovery",
	Long: `srvsync regenerates a managed HAProxy configuration from DNS SRV service
discovery and reloads HAProxy only when the rendered configuration actually
changed.

The configuration template decides which services to discover: every
{{range lookup "name"}} block registers "name" as a discovery key. Each
cycle resolves all keys (SRV records, then addresses), renders the
template, and compares the result against the file on disk. A material
change writes the file and gracefully reloads HAProxy.`,
	// Errors are reported by Execute; Cobra's usage dump would only bury them.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from main with
// the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the CLI. Any command error terminates the process with a
// non-zero status; for the serve command that is the fatal-escalation path
// for failed reconciliation cycles.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "srvsync version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
