package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/fetch"
)

var listPage int

var listCmd = &cobra.Command{
	Use:       "list <upcoming|popular>",
	Short:     "Print one page of a catalog",
	Long:      `Fetch one page of the upcoming or popular catalog, falling back to the cache when offline.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.CatalogUpcoming), string(domain.CatalogPopular)},
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := domain.ParseCatalog(args[0])
		if err != nil {
			return err
		}
		if listPage < 1 {
			return fmt.Errorf("invalid page %d: pages start at 1", listPage)
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		a.probeOnce(ctx)

		res, err := a.fetcher.FetchPage(ctx, catalog, listPage)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, res.Data)
		}
		printPage(out, catalog, res)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
}

func printPage(w io.Writer, catalog domain.Catalog, res fetch.Result[domain.MoviePage]) {
	page := res.Data
	title := fmt.Sprintf("%s · page %d of %d", catalog.Title(), page.Page, page.TotalPages)
	printSection(w, title)
	if res.FromCache() {
		printWarning(w, cachedNotice(res))
	}
	if len(page.Results) == 0 {
		printInfo(w, "No movies found")
		return
	}
	for _, m := range page.Results {
		printMovieRow(w, m)
	}
}

func printMovieRow(w io.Writer, m domain.Movie) {
	year := m.Year()
	if year == "" {
		year = "----"
	}
	_, _ = dimColor.Fprintf(w, "  %8s  ", strconv.Itoa(m.ID))
	_, _ = fmt.Fprintf(w, "%s  %s ", year, m.Title)
	_, _ = ratingColor.Fprintf(w, "★ %s\n", m.Rating())
}

func cachedNotice[T any](res fetch.Result[T]) string {
	msg := "Showing cached data from " + res.FetchedAt.Format("2006-01-02 15:04")
	if res.Stale {
		msg += " (stale)"
	}
	return msg
}
