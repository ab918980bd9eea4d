package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/arbor/pkg/config"
	"github.com/vanderheijden86/arbor/pkg/ui"
	"github.com/vanderheijden86/arbor/pkg/watcher"
)

func (a *app) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse FILE",
		Short: "Open the interactive tree browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.browse(cmd.Context(), args[0])
		},
	}
}

// browse loads path, starts a watcher for live reload when enabled and runs
// the terminal browser until the user quits.
func (a *app) browse(ctx context.Context, path string) error {
	logger := loggerFromContext(ctx)
	nodes, err := a.load(ctx, path)
	if err != nil {
		return err
	}

	var w *watcher.Watcher
	if a.cfg.UI.Watch {
		w, err = watcher.New(path,
			watcher.WithDebounceDuration(time.Duration(a.cfg.UI.DebounceMs)*time.Millisecond),
			watcher.WithOnError(func(err error) { logger.Debug("watch error", "err", err) }),
		)
		if err == nil {
			err = w.Start(ctx)
		}
		if err != nil {
			logger.Warn("live reload disabled", "err", err)
			w = nil
		} else {
			defer w.Stop()
			logger.Debug("watching snapshot", "path", path, "polling", w.IsPolling())
		}
	}

	m, err := ui.New(ui.Options{
		Path:     path,
		Nodes:    nodes,
		Config:   a.cfg,
		StateDir: config.StateDir(),
		Watcher:  w,
	})
	if err != nil {
		return err
	}
	return a.runTUI(ctx, m)
}

func runTUIProgram(ctx context.Context, m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Optional auto-quit for automated tests: set ARBOR_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("ARBOR_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
