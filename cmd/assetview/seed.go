package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/assetview/internal/util"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the asset database with sample data",
	Long: `Insert deterministic sample assets, each with IPs and ports, into the
database used by serve.

Examples:
  assetview seed
  assetview seed --count 250`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 100, "Number of assets to insert")
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, store, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Seed(cmd.Context(), seedCount); err != nil {
		return err
	}

	total, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	util.Info("Seeded %d assets into %s", seedCount, cfg.DBPath)
	fmt.Printf("Inserted %d assets (%d total) into %s\n", seedCount, total, cfg.DBPath)
	return nil
}
