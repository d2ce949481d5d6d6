package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/gitstate/internal/adapters/tui"
	"github.com/xvierd/gitstate/internal/services"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Show everything known about one file",
	Long: `Show the display text, lock, allowed operations and most recent
revisions of a single file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		st, err := app.status.State(ctx, repoRelative(app.reader.Root(), args[0]))
		if err != nil {
			return fmt.Errorf("failed to get file state: %w", err)
		}

		if st.HistorySize() == 0 && st.IsSourceControlled() {
			revs, err := app.status.History(ctx, st.Path, services.DefaultHistoryLimit)
			if err != nil {
				return err
			}
			// Published states are shared; show a copy.
			cp := *st
			cp.History = revs
			st = &cp
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), stateData(st, app.lang))
		}

		fmt.Fprint(cmd.OutOrStdout(), tui.RenderDetails(st, &app.config.Theme, app.lang, 0))
		return nil
	},
}
