// Package cli wires the reel commands together.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	offline     bool
	metricsAddr string
	jsonOutput  bool
)

// rootCmd is the root command for reel. Without a subcommand it opens the
// browser.
var rootCmd = &cobra.Command{
	Use:     "reel",
	Version: "dev",
	Short:   "Browse upcoming and popular movies from the terminal",
	Long: `reel browses the TMDB upcoming and popular catalogs.

Responses are cached on disk so previously seen pages and details stay
available offline. Favorites are stored locally.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: runBrowse,
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/reel/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "never contact the API; serve cached data only")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while browsing")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddGroup(&cobra.Group{ID: "catalog", Title: "Catalog:"})
	rootCmd.AddGroup(&cobra.Group{ID: "local", Title: "Local Data:"})

	browseCmd.GroupID = "catalog"
	listCmd.GroupID = "catalog"
	detailsCmd.GroupID = "catalog"
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(detailsCmd)

	favoritesCmd.GroupID = "local"
	cacheCmd.GroupID = "local"
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(cacheCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
