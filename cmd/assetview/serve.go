package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/assetview/internal/storage"
	"github.com/user/assetview/internal/util"
	"github.com/user/assetview/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the asset API",
	Long: `Serve GET /assets from the local SQLite database.

Query parameters: page, limit, host (substring match) and id. The total
number of matching assets is returned in the X-Total-Count header.

Examples:
  assetview serve
  assetview serve --listen :9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (default :8080)")
	serveCmd.Flags().String("db", "", "SQLite database path")
	viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("db_path", serveCmd.Flags().Lookup("db"))
}

// openStore opens the configured asset database.
func openStore() (*storage.DB, *storage.AssetStorage, error) {
	if err := util.EnsureDir(filepath.Dir(cfg.DBPath)); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, storage.NewAssetStorage(db), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	db, store, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving assets on %s\n", cfg.ListenAddr)
	fmt.Println("Press Ctrl+C to stop")

	srv := web.NewServer(store, cfg, util.Zerolog().With().Str("component", "api").Logger())
	return srv.Start(ctx)
}
