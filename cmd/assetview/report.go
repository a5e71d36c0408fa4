package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/assetview/internal/fetcher"
	"github.com/user/assetview/internal/report"
	"github.com/user/assetview/internal/util"
)

var (
	reportQuery  string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an asset inventory report",
	Long: `Walk every page of the asset API and write a Markdown inventory report
with per-owner counts, port usage and assets missing IPs or ports.

Examples:
  assetview report
  assetview report --host prod
  assetview report --output ./assets.md
  assetview report --output -`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportQuery, "host", "",
		"Filter by host substring")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"Output file path, - for stdout (default: auto-generated in the data directory)")
}

func runReport(cmd *cobra.Command, args []string) error {
	opts := []fetcher.Option{fetcher.WithLogger(util.Zerolog())}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, fetcher.WithTimeout(cfg.RequestTimeout))
	}
	gen := report.NewGenerator(fetcher.New(cfg.APIURL, opts...), cfg.PageLimit)

	data, err := gen.Generate(cmd.Context(), reportQuery)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	switch reportOutput {
	case "":
		path, err := report.WriteMarkdownFile(data, filepath.Join(cfg.DataDir, "reports"))
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", path)
	case "-":
		fmt.Println(report.FormatMarkdown(data))
		return nil
	default:
		if err := os.WriteFile(reportOutput, []byte(report.FormatMarkdown(data)), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", reportOutput)
	}

	// Print summary
	fmt.Println()
	fmt.Println("Report Summary:")
	fmt.Printf("  Assets: %d\n", data.TotalAssets)
	fmt.Printf("  Owners: %d\n", len(data.Owners))
	fmt.Printf("  Distinct ports: %d\n", len(data.Ports))
	fmt.Printf("  Without IPs: %d\n", len(data.WithoutIPs))
	return nil
}
