package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/watcher"
)

// renderFunc draws one frame from a freshly opened project.
type renderFunc func(ctx context.Context, svc *project.Service) error

// renderOnce opens the project, renders and closes it again.
func renderOnce(ctx context.Context, render renderFunc) ([]string, error) {
	svc, closeFn, err := openProject()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	paths := append(svc.Store().Paths(), svc.Config().ConfigPath())
	return paths, render(ctx, svc)
}

// renderAndWatch renders once and, with watch set, re-renders whenever the
// tasks or the config change until interrupted. The project is reopened for
// each frame so config edits take effect.
func renderAndWatch(ctx context.Context, watch bool, render renderFunc) error {
	paths, err := renderOnce(ctx, render)
	if err != nil || !watch {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(paths, func() {
		clearScreen()
		if _, renderErr := renderOnce(ctx, render); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
