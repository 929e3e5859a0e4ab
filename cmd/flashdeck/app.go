package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/conorfennell/flashdeck/internal/cardstore"
	"github.com/conorfennell/flashdeck/internal/config"
	"github.com/conorfennell/flashdeck/internal/logger"
	"github.com/conorfennell/flashdeck/internal/notify"
	"github.com/conorfennell/flashdeck/internal/session"
	"github.com/conorfennell/flashdeck/internal/shell"
	"github.com/conorfennell/flashdeck/internal/terminal"
)

// app holds the wired components for one process.
type app struct {
	logger *slog.Logger
	store  *cardstore.Store
	ctrl   *session.Controller
	render *terminal.Renderer
	shell  *shell.Shell
	out    io.Writer
}

func newApp(cfg *config.Config, in io.Reader, out, errOut io.Writer) (*app, error) {
	log := logger.New(errOut, cfg.LogLevel, cfg.LogFormat)

	store := cardstore.New(cardstore.WithLogger(log))
	n, err := store.Seed(cfg.Drafts())
	if err != nil {
		return nil, fmt.Errorf("failed to seed cards: %w", err)
	}
	store.SetCategory(cfg.Category)
	log.Debug("deck ready", "seeded", n, "category", store.SelectedCategory())

	ctrl := session.NewController(store,
		session.WithAdvanceDelay(cfg.AdvanceDelay),
		session.WithLogger(log),
	)
	render := terminal.New(lipgloss.NewRenderer(out), cfg.Color)

	return &app{
		logger: log,
		store:  store,
		ctrl:   ctrl,
		render: render,
		shell:  shell.New(store, ctrl, in, out, notify.NewTerminal(out, cfg.Color), render),
		out:    out,
	}, nil
}

func (a *app) printCards(category string) {
	if category == "" {
		category = a.store.SelectedCategory()
	}
	fmt.Fprintln(a.out, a.render.CardList(a.store.Filtered(category)))
}

func (a *app) printCategories() {
	fmt.Fprintln(a.out, a.render.Categories(a.store.Categories(), a.store.Count, a.store.SelectedCategory()))
}
