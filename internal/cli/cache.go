package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/fetch"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
}

var cacheLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cached responses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		keys := []string{}
		for _, prefix := range fetch.ResponsePrefixes() {
			k, err := a.store.Keys(prefix)
			if err != nil {
				return fmt.Errorf("failed to list cache: %w", err)
			}
			keys = append(keys, k...)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, keys)
		}
		if len(keys) == 0 {
			printInfo(out, "Cache is empty")
			return nil
		}
		for _, k := range keys {
			printInfo(out, k)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached response (favorites are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		printSuccess(cmd.OutOrStdout(), "Cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheLsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
