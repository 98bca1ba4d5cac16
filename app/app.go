package app

import (
	"context"
	"errors"

	"cursor-id-reset/apperr"
	"cursor-id-reset/identity"
	"cursor-id-reset/log"
	"cursor-id-reset/storage"
	"cursor-id-reset/ui"
)

// ErrCancelled is returned when the user declines to go on.
var ErrCancelled = errors.New("operation cancelled")

// Prompter answers yes/no questions.
type Prompter interface {
	Confirm(prompt string) bool
}

// ProcessGuard makes sure the target application is not running. It returns
// false when processes are still running and the user chose not to close them.
type ProcessGuard interface {
	ListAndMaybeKill(ctx context.Context, name string) (bool, error)
}

// Options describe one reset run.
type Options struct {
	Version     string
	Username    string
	GOOS        string
	AppName     string
	ProcessName string
	// StoragePath overrides the per-OS storage.json location.
	StoragePath string
}

// ResolvePath returns the storage.json path for opts.
func (o Options) ResolvePath() (string, error) {
	if o.StoragePath != "" {
		return o.StoragePath, nil
	}
	if o.Username == "" {
		return "", apperr.System("resolve_user", errors.New("could not determine the current user"))
	}
	return storage.GetConfigPath(o.Username, o.GOOS, o.AppName), nil
}

// App holds the collaborators of a reset run.
type App struct {
	console   *ui.Console
	prompter  Prompter
	guard     ProcessGuard
	generator *identity.Generator
	logger    *log.Logger
	storeOpts []storage.Option
}

// New returns an App. storeOpts are passed to every Store it opens.
func New(console *ui.Console, prompter Prompter, guard ProcessGuard, generator *identity.Generator, logger *log.Logger, storeOpts ...storage.Option) *App {
	return &App{
		console:   console,
		prompter:  prompter,
		guard:     guard,
		generator: generator,
		logger:    logger,
		storeOpts: storeOpts,
	}
}

// Run performs the reset. It returns ErrCancelled when the user stops at a
// prompt and an apperr.Error for everything that went wrong.
func (a *App) Run(ctx context.Context, opts Options) error {
	path, err := opts.ResolvePath()
	if err != nil {
		return err
	}
	a.logger.Info("starting reset", "user", opts.Username, "os", opts.GOOS, "path", path)

	a.console.Info("⚡ Checking for running %s instances...", opts.AppName)
	closed, err := a.guard.ListAndMaybeKill(ctx, opts.ProcessName)
	if err != nil {
		return apperr.System("ensure_closed", err)
	}
	if !closed {
		a.console.Warn("\nClose %s and run this tool again.", opts.AppName)
		return ErrCancelled
	}

	a.console.ClearScreen()
	a.console.PrintBanner(opts.Version)
	a.console.Plain("Config location: %s", path)

	store := storage.NewStore(path, a.logger, a.storeOpts...)

	a.console.Info("\nReading current configuration...")
	prev, err := store.ReadExisting()
	var old *identity.IdentifierSet
	switch {
	case err != nil:
		a.console.Error("\nFailed to read configuration: %v", err)
		if !a.prompter.Confirm("Continue and generate a new configuration?") {
			a.console.Warn("\nOperation cancelled")
			return ErrCancelled
		}
		// The unreadable file is replaced; its bytes survive in the backup.
		prev = storage.EmptyDocument()
	case prev == nil:
		a.console.Warn("\nNo existing configuration found")
	default:
		old = &prev.Set
		a.console.ShowSet("Current configuration", prev.Set)
	}

	a.console.Info("\nGenerating new configuration...")
	set := a.generator.NewSet(old)
	a.console.ShowSet("New configuration", set)
	if old != nil {
		a.console.ShowComparison(*old, set)
	}

	if !a.prompter.Confirm("Overwrite the existing configuration with the new one?") {
		a.console.Warn("\nOperation cancelled")
		return ErrCancelled
	}

	a.console.Info("\nSaving configuration...")
	result, err := store.Save(set, prev)
	if result.BackupErr != nil {
		a.console.Warn("Failed to create backup: %v", result.BackupErr)
	}
	if result.BackupPath != "" {
		a.console.Success("Created backup: %s", result.BackupPath)
	}
	if err != nil {
		return err
	}

	a.logger.Info("reset complete", "path", path)
	a.console.Success("\n[√] Configuration updated successfully!")
	a.console.Warn("\n[!] Restart %s manually for the new configuration to take effect", opts.AppName)
	return nil
}
