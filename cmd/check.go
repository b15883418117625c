package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"srvsync/internal/app"
)

var (
	checkDebug    bool
	checkConfig   string
	checkTemplate string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Preflight: resolve, render, and print the configuration",
	Long: `Runs the startup verification and a single resolve-and-render pass,
printing the rendered configuration to stdout without writing any file or
touching HAProxy. Useful before deploying a new template.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(checkDebug, checkConfig, checkTemplate, 0)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Check(ctx, os.Stdout)
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkDebug, "debug", false, "Enable debug logging")
	checkCmd.Flags().StringVar(&checkConfig, "config", "/etc/srvsync/config.yaml", "Configuration file path")
	checkCmd.Flags().StringVar(&checkTemplate, "template", "", "Template path (overrides config file)")
}
