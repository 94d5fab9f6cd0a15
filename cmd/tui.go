package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/tui"
	"github.com/twiced-technology-gmbh/planwatch/internal/watcher"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := tui.NewChart(ctx, svc)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go startTUIWatcher(ctx, model, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, model *tui.Chart, p *tea.Program) {
	w, err := watcher.New(model.WatchPaths(), func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, func(watchErr error) {
		p.Send(tui.ErrMsg{Err: watchErr})
	})
}
