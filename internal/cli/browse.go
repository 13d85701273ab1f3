package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/reel/internal/prefs"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/syncer"
	"github.com/mmcdole/reel/internal/tui"
)

var errNotTerminal = errors.New("browse needs an interactive terminal; use 'reel list' instead")

// isTerminal is swapped out in tests.
var isTerminal = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive catalog browser",
	Long: `Open the interactive catalog browser.

Keys: tab/1/2 switch catalogs, j/k move (the end of the list loads the next
page), r refresh, f toggle favorite, F favorites, enter details, / filter,
esc back, q quit.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		return errNotTerminal
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a.logger.Info("starting reel", "version", cmd.Root().Version, "offline", offline)

	if a.prober != nil {
		a.prober.Start(ctx)
	}
	if a.cfg.Metrics.Addr != "" {
		serveMetrics(ctx, a.cfg.Metrics.Addr, a.logger)
	}

	core := syncer.New(a.fetcher, store.NewFavorites(a.store), a.reach, a.logger)
	done := make(chan error, 1)
	go func() { done <- core.Run(ctx) }()

	updates, unsubscribe := core.Subscribe()
	defer unsubscribe()

	saved := prefs.Load(prefs.DefaultPath())
	model := tui.NewModel(core, updates, tui.Options{
		ImageBaseURL: a.cfg.API.ImageBaseURL,
		ShowOverview: a.cfg.UI.ShowOverview,
		InitialTab:   saved.Tab(),
	})

	final, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()

	// Stop the core and wait for the pending favorites write
	cancel()
	if err := <-done; err != nil {
		a.logger.Error("sync core stopped with error", "error", err)
	}

	if runErr != nil {
		a.logger.Error("TUI error", "error", runErr)
		return fmt.Errorf("TUI error: %w", runErr)
	}

	if m, ok := final.(tui.Model); ok {
		saved.LastTab = string(m.ActiveTab())
		if err := prefs.Save(prefs.DefaultPath(), saved); err != nil {
			a.logger.Warn("failed to save prefs", "error", err)
		}
	}
	a.logger.Info("shutting down")
	return nil
}
