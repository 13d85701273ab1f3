package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/store"
)

var favoritesMatch string

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List saved favorites",
	Long:  `List saved favorites in the order they were added, or ranked by --match.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		favs, err := store.NewFavorites(a.store).LoadFavorites(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load favorites: %w", err)
		}
		favs = search.RankFavorites(favoritesMatch, favs)

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, favs)
		}
		if len(favs) == 0 {
			printInfo(out, "No favorites found")
			return nil
		}
		printSection(out, fmt.Sprintf("Favorites (%d)", len(favs)))
		for _, m := range favs {
			printMovieRow(out, m)
		}
		return nil
	},
}

func init() {
	favoritesCmd.Flags().StringVarP(&favoritesMatch, "match", "m", "", "fuzzy filter by title")
}
