package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/user/assetview/internal/fetcher"
	"github.com/user/assetview/internal/sorter"
	"github.com/user/assetview/internal/util"
	"github.com/user/assetview/internal/view"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

var (
	cfgFile string
	cfg     *util.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "assetview",
	Short: "Browse a paginated, searchable asset inventory",
	Long: `AssetView browses the asset inventory served by an asset API.

Pages are fetched on demand, cached per page and search query, and sorted
by host before display. The same binary can run the asset API itself
backed by a local SQLite database.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.assetview/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("api-url", "",
		"asset API base URL (default http://localhost:8080)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))

	// Add subcommands
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)

	// Add shell completion
	rootCmd.AddCommand(completionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = util.LoadConfig(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	util.InitLogger(cfg.LogLevel, cfg.LogFile, true)
}

// newCoordinator wires a view coordinator to the configured asset API.
func newCoordinator(sortDelay bool) *view.Coordinator {
	logger := util.Zerolog()

	opts := []fetcher.Option{fetcher.WithLogger(logger.With().Str("component", "fetcher").Logger())}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, fetcher.WithTimeout(cfg.RequestTimeout))
	}
	f := fetcher.New(cfg.APIURL, opts...)

	delay := cfg.SortDelay
	if !sortDelay {
		delay = 0
	}
	// Validate has already rejected unparsable locales.
	tag := language.Make(cfg.SortLocale)

	return view.New(f,
		view.WithLimit(cfg.PageLimit),
		view.WithSorter(sorter.New(tag, delay)),
		view.WithLogger(logger.With().Str("component", "view").Logger()),
	)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("assetview version %s\n", version)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for assetview.

To load completions:

Bash:
  $ source <(assetview completion bash)

Zsh:
  $ source <(assetview completion zsh)

Fish:
  $ assetview completion fish | source

PowerShell:
  PS> assetview completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		default:
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
	},
}
