package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"srvsync/internal/app"
)

var statsConfig string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show HAProxy statistics",
	Long: `Queries the HAProxy stats socket (show stat) and renders the per-proxy
service table. Requires a running HAProxy with a configured stats socket.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(false, statsConfig, "", 0)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stats, err := application.Stats(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Proxy", "Service", "Status", "Current", "Total", "Check"})
	for _, row := range stats.Summary() {
		t.AppendRow(table.Row{row.Proxy, row.Service, row.Status, row.Current, row.Total, row.CheckRes})
	}
	t.Render()
	return nil
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsConfig, "config", "/etc/srvsync/config.yaml", "Configuration file path")
}
