package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/gitstate/internal/adapters/tui"
	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/services"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse file states interactively",
	Long: `Open a full-screen browser over the file states. Filter with /, toggle
modified-only with m, refresh with r and show details with enter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		snap, err := app.status.Refresh(ctx, services.RefreshRequest{})
		if err != nil {
			return fmt.Errorf("failed to refresh status: %w", err)
		}

		model := tui.NewModel(snap, refreshFunc(ctx), &app.config.Theme, app.lang)
		return tui.RunBrowser(model)
	},
}

// refreshFunc refreshes the status, keeping the reported paths git still knows.
func refreshFunc(ctx context.Context) tui.RefreshFunc {
	return func() (*domain.Snapshot, error) {
		return app.status.Refresh(ctx, services.RefreshRequest{Carry: app.status.Snapshot().Paths()})
	}
}
