package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/xvierd/gitstate/internal/adapters/tui"
	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/logging"
	"github.com/xvierd/gitstate/internal/ports"
	"github.com/xvierd/gitstate/internal/services"
)

var (
	watchTUI      bool
	watchNoNotify bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the working copy and report state changes",
	Long: `Refresh whenever the worktree or the git directory changes. Files that
become locked by another user, outdated or conflicted are reported and, when
notifications are enabled, raise a desktop notification.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(setupSignalHandler())
		defer cancel()

		var notifier ports.Notifier
		if app.notifier.IsEnabled() && !watchNoNotify {
			notifier = app.notifier
		}
		debounce := time.Duration(app.config.Watch.Debounce)

		if watchTUI {
			return watchWithBrowser(ctx, cancel, notifier, debounce)
		}

		watcher := services.NewWatchService(app.status, notifier, debounce, app.logger)
		out := cmd.OutOrStdout()
		first := true
		err := watcher.Run(ctx, func(snap *domain.Snapshot, transitions []domain.Transition) {
			if first {
				first = false
				fmt.Fprintf(out, "Watching %s (%d files to report, %d directories)\n", snap.Root, snap.Len(), watcher.Watched())
			}
			printTransitions(out, transitions)
		})
		if err != nil {
			return fmt.Errorf("watch failed: %w", err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchTUI, "tui", false, "Show the interactive browser and update it live")
	watchCmd.Flags().BoolVar(&watchNoNotify, "no-notify", false, "Disable desktop notifications")
}

// watchWithBrowser runs the browser and pushes every watcher snapshot into it.
func watchWithBrowser(ctx context.Context, cancel context.CancelFunc, notifier ports.Notifier, debounce time.Duration) error {
	snap, err := app.status.Refresh(ctx, services.RefreshRequest{})
	if err != nil {
		return fmt.Errorf("failed to refresh status: %w", err)
	}

	program := tui.NewProgram(tui.NewModel(snap, refreshFunc(ctx), &app.config.Theme, app.lang))

	// Log output would tear the full-screen view.
	watcher := services.NewWatchService(app.status, notifier, debounce, logging.Nop())
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func(snap *domain.Snapshot, _ []domain.Transition) {
			program.Send(tui.SnapshotMsg{Snapshot: snap})
		})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	cancel()
	return <-done
}

func printTransitions(w io.Writer, transitions []domain.Transition) {
	now := time.Now().Format(time.TimeOnly)
	for _, t := range transitions {
		switch t.Kind {
		case domain.TransitionLockedByOther:
			fmt.Fprintf(w, "%s  locked     %s (by %s)\n", now, t.Path, t.Owner)
		case domain.TransitionOutdated:
			fmt.Fprintf(w, "%s  outdated   %s\n", now, t.Path)
		case domain.TransitionConflicted:
			fmt.Fprintf(w, "%s  conflicted %s\n", now, t.Path)
		default:
			fmt.Fprintf(w, "%s  %-10s %s\n", now, t.Kind, t.Path)
		}
	}
}
