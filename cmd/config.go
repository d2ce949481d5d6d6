package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/xvierd/gitstate/internal/config"
	"github.com/xvierd/gitstate/internal/logging"
	"github.com/xvierd/gitstate/internal/mergeinfo"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit gitstate settings",
	Long:  `Show where the configuration lives, print the effective settings or change one of them.`,
	// The config commands never open the repository.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := configSettings(app.config)

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), settings)
		}

		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Current configuration:")
		fmt.Fprintln(out)
		for _, k := range keys {
			fmt.Fprintf(out, "    %-24s %s\n", k, settings[k])
		}
		fmt.Fprintln(out)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save it",
	Long: `Change one setting and save it to the config file. Keys:
  language, locking.enabled, locking.user, merge_info.mode, git.binary,
  git.remote, git.history_depth, git.workers, watch.debounce,
  notifications.enabled, notifications.sound, mcp.enabled, log.level`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfigValue(app.config, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(app.config); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s = %s\n", args[0], configSettings(app.config)[args[0]])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// configSettings flattens the non-theme settings into their file keys.
func configSettings(cfg *config.Config) map[string]string {
	return map[string]string{
		"language":              cfg.Language,
		"locking.enabled":       strconv.FormatBool(cfg.Locking.Enabled),
		"locking.user":          cfg.Locking.User,
		"merge_info.mode":       cfg.MergeInfo.Mode,
		"git.binary":            cfg.Git.Binary,
		"git.remote":            cfg.Git.Remote,
		"git.history_depth":     strconv.Itoa(cfg.Git.HistoryDepth),
		"git.workers":           strconv.Itoa(cfg.Git.Workers),
		"watch.debounce":        cfg.Watch.Debounce.String(),
		"notifications.enabled": strconv.FormatBool(cfg.Notifications.Enabled),
		"notifications.sound":   strconv.FormatBool(cfg.Notifications.Sound),
		"mcp.enabled":           strconv.FormatBool(cfg.MCP.Enabled),
		"storage.data_dir":      cfg.Storage.DataDir,
		"log.level":             cfg.Log.Level,
	}
}

// setConfigValue validates value and assigns it to the setting named key.
func setConfigValue(cfg *config.Config, key, value string) error {
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		return b, nil
	}
	parseCount := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%s expects a non-negative number, got %q", key, value)
		}
		return n, nil
	}

	var err error
	switch key {
	case "language":
		if _, err := language.Parse(value); err != nil {
			return fmt.Errorf("invalid language %q: %w", value, err)
		}
		cfg.Language = value
	case "locking.enabled":
		cfg.Locking.Enabled, err = parseBool()
	case "locking.user":
		cfg.Locking.User = value
	case "merge_info.mode":
		if _, err := mergeinfo.ForMode(value); err != nil {
			return err
		}
		cfg.MergeInfo.Mode = value
	case "git.binary":
		cfg.Git.Binary = value
	case "git.remote":
		cfg.Git.Remote = value
	case "git.history_depth":
		cfg.Git.HistoryDepth, err = parseCount()
	case "git.workers":
		cfg.Git.Workers, err = parseCount()
	case "watch.debounce":
		d, perr := time.ParseDuration(value)
		if perr != nil || d <= 0 {
			return fmt.Errorf("watch.debounce expects a positive duration like 500ms, got %q", value)
		}
		cfg.Watch.Debounce = config.Duration(d)
	case "notifications.enabled":
		cfg.Notifications.Enabled, err = parseBool()
	case "notifications.sound":
		cfg.Notifications.Sound, err = parseBool()
	case "mcp.enabled":
		cfg.MCP.Enabled, err = parseBool()
	case "log.level":
		if _, lerr := logging.New(io.Discard, value); lerr != nil {
			return lerr
		}
		cfg.Log.Level = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return err
}
