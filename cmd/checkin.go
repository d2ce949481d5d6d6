package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/gitstate/internal/adapters/tui"
	"github.com/xvierd/gitstate/internal/services"
)

// checkinCandidatesCmd represents the checkin-candidates command
var checkinCandidatesCmd = &cobra.Command{
	Use:     "checkin-candidates",
	Aliases: []string{"candidates"},
	Short:   "List the files that can be checked in",
	Long: `List the files with changes to record that may be checked in: not
locked by another user, not conflicted and at the head revision.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if _, err := app.status.Refresh(ctx, services.RefreshRequest{}); err != nil {
			return fmt.Errorf("failed to refresh status: %w", err)
		}
		states, err := app.state.GetCheckInCandidates(ctx)
		if err != nil {
			return fmt.Errorf("failed to get check-in candidates: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"files":       statesData(states, app.lang),
				"total_count": len(states),
			})
		}

		fmt.Fprint(cmd.OutOrStdout(), tui.RenderStatus(states, &app.config.Theme, app.lang, 0))
		return nil
	},
}
