package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// mergeInfoCmd represents the merge-info command
var mergeInfoCmd = &cobra.Command{
	Use:   "merge-info <path>",
	Short: "Show the merge base and incoming side of a conflicted file",
	Long: `Show what a merge tool needs for a conflicted file: the revision the
conflict is based on and, in resolve mode, the files and revisions of both
sides. The answer depends on the merge info mode (--merge-info).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		info, err := app.state.GetMergeInfo(ctx, repoRelative(app.reader.Root(), args[0]))
		if err != nil {
			return fmt.Errorf("failed to get merge info: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), info)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Path:          %s\n", info.Path)
		fmt.Fprintf(out, "Mode:          %s\n", info.Mode)
		if !info.Conflicted {
			fmt.Fprintln(out, "Not conflicted.")
			return nil
		}

		if info.BaseRevision != nil {
			fmt.Fprintf(out, "Base revision: #%d %s (%s)\n",
				info.BaseRevision.Number, info.BaseRevision.ShortIdentifier(), info.BaseRevision.Author)
		} else {
			fmt.Fprintln(out, "Base revision: unknown")
		}
		if info.Resolve != nil {
			fmt.Fprintf(out, "Base:          %s @ %s\n", info.Resolve.BaseFile, info.Resolve.BaseRevision)
			fmt.Fprintf(out, "Incoming:      %s @ %s\n", info.Resolve.RemoteFile, info.Resolve.RemoteRevision)
		}
		return nil
	},
}
