package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/desertthunder/smartlist/internal/tasks"
	"github.com/desertthunder/smartlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive artist panel.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.Options{
		Loader:    r.panelClient(),
		Committer: r.panelClient(),
		Source:    r.panelSource(cmd.Bool("simulate") || r.config.Panel.Simulate),
		Logger:    fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// panelSource picks the panel's event source: the server's WebSocket stream, or a scripted replay.
func (r *Runner) panelSource(simulate bool) ui.SourceFunc {
	return func(ids []string) tasks.EventSource {
		if simulate {
			return tasks.NewScriptedSource(r.config.Panel.Delay(), ids...)
		}

		src, err := r.panelClient().SyncSource()
		if err != nil {
			return tasks.SourceFunc(func(context.Context) (<-chan tasks.Event, error) { return nil, err })
		}
		src.Logger = r.logger
		return src
	}
}
