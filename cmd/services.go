package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/xvierd/gitstate/internal/adapters/git"
	"github.com/xvierd/gitstate/internal/adapters/notification"
	"github.com/xvierd/gitstate/internal/adapters/storage"
	"github.com/xvierd/gitstate/internal/config"
	"github.com/xvierd/gitstate/internal/locale"
	"github.com/xvierd/gitstate/internal/logging"
	"github.com/xvierd/gitstate/internal/mergeinfo"
	"github.com/xvierd/gitstate/internal/ports"
	"github.com/xvierd/gitstate/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config   *config.Config
	logger   *log.Logger
	lang     language.Tag
	storage  ports.Storage
	reader   *git.Reader
	status   *services.StatusService
	state    *services.StateService
	notifier *notification.Notifier
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices(cmd *cobra.Command) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	// Initialize notifier
	app.notifier = notification.New(&app.config.Notifications)

	// Resolve merge info mode: --merge-info flag > config > default
	modeName := app.config.MergeInfo.Mode
	if mergeInfoFlag != "" {
		modeName = mergeInfoFlag
	}
	mode, err := mergeinfo.ForMode(modeName)
	if err != nil {
		return fmt.Errorf("invalid merge info mode: %w", err)
	}

	// Open the working copy
	reader, err := git.Open(repoPath, app.config.Git.Remote)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}
	app.reader = reader

	// Determine database path
	path := dbPath
	if path == "" {
		path = config.GetDBPath(app.config)
	}

	// Ensure directory exists
	if err := os.MkdirAll(getDir(path), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// Initialize storage
	app.storage, err = storage.New(path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	locking := app.config.Locking.Enabled
	if cmd.Flags().Changed("locking") {
		locking = lockingFlag
	}

	// Initialize services
	app.status = services.NewStatusService(reader, app.storage, services.StatusOptions{
		LockingEnabled: locking,
		MergeInfo:      mode,
		HistoryDepth:   app.config.Git.HistoryDepth,
		Workers:        app.config.Git.Workers,
	}, app.logger)
	if locking {
		runner := git.NewExecRunner(app.config.Git.Binary)
		app.status.SetLockLister(git.NewLFSLocks(runner, reader.Root(), app.config.Locking.User))
	}
	app.state = services.NewStateService(app.status)

	app.logger.Debug("services initialized",
		"root", reader.Root(),
		"db", path,
		"locking", locking,
		"merge_info", mode.Name(),
	)
	return nil
}

// loadConfig loads the configuration and builds the logger and language
// from it. Commands that never touch the repository only need this.
func loadConfig(cmd *cobra.Command) error {
	var err error
	app.config, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		app.config = config.DefaultConfig()
	}

	level := app.config.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	app.logger, err = logging.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}

	app.lang = locale.Parse(app.config.Language)
	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.storage != nil {
		err := app.storage.Close()
		app.storage = nil
		return err
	}
	return nil
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}
