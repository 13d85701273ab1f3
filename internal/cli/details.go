package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tmdb"
)

var detailsCmd = &cobra.Command{
	Use:   "details <id>",
	Short: "Print the details of a movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid movie id %q", args[0])
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		a.probeOnce(ctx)

		res, err := a.fetcher.FetchDetails(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, res.Data)
		}
		if res.FromCache() {
			printWarning(out, cachedNotice(res))
		}
		printDetails(out, res.Data, a.cfg.API.ImageBaseURL)
		return nil
	},
}

func printDetails(w io.Writer, d domain.MovieDetails, imageBase string) {
	title := d.Title
	if y := d.Year(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	printSection(w, title)
	if d.Tagline != "" {
		_, _ = dimColor.Fprintf(w, "  %s\n", d.Tagline)
	}
	printLabelValue(w, "Rating", fmt.Sprintf("%s (%d votes)", d.Rating(), d.VoteCount))
	printLabelValue(w, "Runtime", d.FormattedRuntime())
	printLabelValue(w, "Genres", d.GenreNames())
	printLabelValue(w, "Released", d.ReleaseDate)
	printLabelValue(w, "Status", d.Status)
	printLabelValue(w, "Homepage", d.Homepage)
	printLabelValue(w, "Poster", tmdb.ImageURL(imageBase, d.PosterPath))
	if d.Overview != "" {
		printInfo(w, "")
		printInfo(w, d.Overview)
	}
}
