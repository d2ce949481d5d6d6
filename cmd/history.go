package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xvierd/gitstate/internal/services"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <path>",
	Short: "Show the revision history of a file",
	Long:  `List the commits that touched a file, newest first. Revision 1 is the oldest.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		path := repoRelative(app.reader.Root(), args[0])

		revs, err := app.state.GetFileHistory(ctx, path, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"path":        path,
				"revisions":   revs,
				"total_count": len(revs),
			})
		}

		out := cmd.OutOrStdout()
		if len(revs) == 0 {
			fmt.Fprintf(out, "No history for %s.\n", path)
			return nil
		}
		for _, rev := range revs {
			desc := rev.Description
			if i := strings.IndexByte(desc, '\n'); i >= 0 {
				desc = desc[:i]
			}
			fmt.Fprintf(out, "#%-4d %s  %s  %-8s %-20s %s\n",
				rev.Number,
				rev.ShortIdentifier(),
				rev.Date.Format("2006-01-02 15:04"),
				rev.Action,
				rev.Author,
				desc,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", services.DefaultHistoryLimit, "Maximum number of revisions to show")
}
