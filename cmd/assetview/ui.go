package main

import (
	"github.com/spf13/cobra"

	"github.com/user/assetview/internal/tui"
	"github.com/user/assetview/internal/util"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal asset browser",
	Long: `Launch an interactive terminal browser over the asset API.

Pages load on demand and are cached for the session. Type / to search by
host; the search always starts again from page one.

Keys: ←/p previous page, →/n next page, r refresh, esc clear search, q quit.`,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	// Keep log output off the alternate screen.
	util.InitLogger(cfg.LogLevel, cfg.LogFile, false)
	util.Info("Starting asset browser against %s", cfg.APIURL)

	c := newCoordinator(true)
	defer c.Close()

	return tui.NewApp(c).Run()
}
