package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"srvsync/internal/app"
)

var (
	serveDebug    bool
	serveConfig   string
	serveTemplate string
	serveInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync daemon",
	Long: `Runs the reconciliation loop: resolve all discovery keys, render the
configuration template, and on a material change write the configuration
and reload HAProxy.

Resolution failures of individual keys are logged and drop the affected
backend from the rendered configuration; they never stop the daemon. A
failed configuration write or reload terminates the process with a
non-zero status, relying on the process manager above to restart it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveConfig, serveTemplate, serveInterval)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfig, "config", "/etc/srvsync/config.yaml", "Configuration file path")
	serveCmd.Flags().StringVar(&serveTemplate, "template", "", "Template path (overrides config file)")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "Reconcile interval, e.g. 1000ms (overrides config file)")
}
