// Package cmd provides the CLI commands for gitstate.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	repoPath      string
	dbPath        string
	jsonOutput    bool
	logLevel      string
	lockingFlag   bool
	mergeInfoFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gitstate",
	Short: "gitstate - Git working-copy file states",
	Long: `gitstate classifies the files of a git working copy the way a
source-control panel does: working-copy status, exclusive locks, newer
versions on the remote, revision history and merge-conflict details.

Run "gitstate status" for a listing or "gitstate browse" for the
interactive browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "C", ".", "Path inside the git working copy")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: ~/.gitstate/gitstate.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&lockingFlag, "locking", false, "Query git-lfs locks (overrides locking.enabled)")
	rootCmd.PersistentFlags().StringVar(&mergeInfoFlag, "merge-info", "", "Merge info mode: resolve, legacy")

	// Set version - cobra handles --version automatically
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("gitstate\nVersion: {{.Version}}\n")

	// Add subcommands
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mergeInfoCmd)
	rootCmd.AddCommand(checkinCandidatesCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
}

// repoRelative turns a command-line path into the slash-separated, root-relative
// form used as state key. Relative paths are taken from the working directory
// when it lies inside the repository, and from the repository root otherwise.
func repoRelative(root, p string) string {
	abs := p
	if !filepath.IsAbs(p) {
		cwd, err := os.Getwd()
		if err != nil || !within(root, cwd) {
			return filepath.ToSlash(filepath.Clean(p))
		}
		abs = filepath.Join(cwd, p)
	}
	if !within(root, abs) {
		return abs
	}
	rel, _ := filepath.Rel(root, abs)
	return filepath.ToSlash(rel)
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// getDir returns the directory part of a path
func getDir(path string) string {
	lastSep := 0
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			lastSep = i
			break
		}
	}
	if lastSep == 0 {
		return "."
	}
	return path[:lastSep]
}
