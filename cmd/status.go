package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/xvierd/gitstate/internal/adapters/tui"
	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/ports"
	"github.com/xvierd/gitstate/internal/services"
)

var (
	statusFilter   string
	statusModified bool
	statusHistory  bool
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [paths...]",
	Short: "Show file states",
	Long: `Refresh and list the state of every changed, outdated or locked file.
Paths given as arguments are reported even when they are clean, and limit
the listing to themselves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		paths := make([]string, 0, len(args))
		for _, arg := range args {
			paths = append(paths, repoRelative(app.reader.Root(), arg))
		}

		snap, err := app.status.Refresh(ctx, services.RefreshRequest{Paths: paths, WithHistory: statusHistory})
		if err != nil {
			return fmt.Errorf("failed to refresh status: %w", err)
		}

		states, err := app.status.States(ctx, ports.StateFilter{Query: statusFilter, ModifiedOnly: statusModified})
		if err != nil {
			return fmt.Errorf("failed to list states: %w", err)
		}
		if len(paths) > 0 {
			states = onlyPaths(states, paths)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"root":        snap.Root,
				"snapshot_id": snap.ID,
				"taken_at":    snap.TakenAt.Format("2006-01-02T15:04:05"),
				"files":       statesData(states, app.lang),
				"total_count": len(states),
			})
		}

		fmt.Fprint(cmd.OutOrStdout(), tui.RenderStatus(states, &app.config.Theme, app.lang, 0))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusFilter, "filter", "f", "", "Fuzzy filter on file paths")
	statusCmd.Flags().BoolVarP(&statusModified, "modified", "m", false, "Only show files with changes to record")
	statusCmd.Flags().BoolVar(&statusHistory, "history", false, "Load revision history for every listed file")
}

// onlyPaths keeps the states whose path is one of paths, in their order.
func onlyPaths(states []*domain.FileState, paths []string) []*domain.FileState {
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[p] = true
	}
	result := make([]*domain.FileState, 0, len(paths))
	for _, st := range states {
		if want[st.Path] {
			result = append(result, st)
		}
	}
	return result
}

// stateData renders a state for JSON output.
func stateData(st *domain.FileState, lang language.Tag) map[string]interface{} {
	data := map[string]interface{}{
		"path":            st.Path,
		"status":          string(st.WorkingCopy),
		"lock":            string(st.Lock),
		"locking_enabled": st.LockingEnabled,
		"current":         st.IsCurrent(),
		"display_name":    st.DisplayName().Localize(lang),
		"tooltip":         st.DisplayTooltip().Localize(lang),
		"icon":            string(st.IconKey()),
		"capabilities":    st.Capabilities(),
		"observed_at":     st.Timestamp.Format("2006-01-02T15:04:05"),
	}
	if owner := st.LockedBy(); owner != "" {
		data["lock_owner"] = owner
	}
	if st.HistorySize() > 0 {
		data["history"] = st.History
	}
	return data
}

func statesData(states []*domain.FileState, lang language.Tag) []map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(states))
	for _, st := range states {
		list = append(list, stateData(st, lang))
	}
	return list
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
