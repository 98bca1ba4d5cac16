package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"cursor-id-reset/app"
	"cursor-id-reset/apperr"
	"cursor-id-reset/config"
	"cursor-id-reset/identity"
	"cursor-id-reset/log"
	"cursor-id-reset/process"
	"cursor-id-reset/storage"
	"cursor-id-reset/ui"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// errReported marks an error that has already been shown to the user.
var errReported = errors.New("reported")

var (
	version     = "1.0.0"
	appFlag     string
	processFlag string
	userFlag    string
	pathFlag    string
	yesFlag     bool
	formatFlag  string
	decodeFlag  bool
	rootCmd     = &cobra.Command{
		Use:           "cursor-id-reset",
		Short:         "Reset the telemetry identifiers stored by Cursor",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runReset,
	}

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the identifiers currently stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(cmd, false)
			defer s.close()

			store, err := s.store()
			if err != nil {
				return err
			}
			doc, err := store.ReadExisting()
			if err != nil {
				return err
			}
			if doc == nil {
				s.console.Warn("No existing configuration found at %s", s.opts.StoragePath)
				return nil
			}
			return writeSet(s.console, formatFlag, s.opts.StoragePath, doc.Set, decodeFlag)
		},
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Print a freshly generated identifier set without writing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(cmd, false)
			defer s.close()
			return writeSet(s.console, formatFlag, "", identity.NewSet(nil), decodeFlag)
		},
	}

	backupsCmd = &cobra.Command{
		Use:   "backups",
		Short: "List backups of the storage file, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(cmd, false)
			defer s.close()

			store, err := s.store()
			if err != nil {
				return err
			}
			backups, err := store.Backups()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				s.console.Warn("No backups found next to %s", s.opts.StoragePath)
				return nil
			}
			for _, b := range backups {
				s.console.Plain("%s  %8d  %s", b.CreatedAt.Format("2006-01-02 15:04:05"), b.Size, b.Path)
			}
			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(cmd, false)
			defer s.close()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			info := map[string]interface{}{
				"config_file":  filepath.Join(configDir, config.ConfigFileName),
				"config":       s.cfg,
				"storage_path": s.opts.StoragePath,
				"log_file":     s.cfg.LogFile,
				"user":         s.opts.Username,
				"os":           s.opts.GOOS,
				"automated":    s.env.Automated,
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(s.console.Writer(), string(data))
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cursor-id-reset",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cursor-id-reset version %s\n", version)
		},
	}
)

// session bundles what every command needs.
type session struct {
	cfg     *config.Config
	env     config.Environment
	logger  *log.Logger
	console *ui.Console
	opts    app.Options
}

func newSession(cmd *cobra.Command, interactive bool) *session {
	bootLogger := log.NewWriter(os.Stderr, log.DebugEnabled())
	var cfg *config.Config
	if interactive {
		cfg = config.LoadConfig(bootLogger)
	} else {
		// Read-only commands don't create the settings file.
		cfg = config.ReadConfig(bootLogger)
	}
	env := config.LoadEnvironment()

	logFile := cfg.LogFile
	if !interactive {
		// Read-only commands leave the run log alone.
		logFile = ""
	}
	var logger *log.Logger
	if logFile == "" {
		logger = log.NewNop()
	} else {
		logger = log.Initialize(logFile, log.DebugEnabled())
	}

	opts := app.Options{
		Version:     version,
		Username:    env.Username,
		GOOS:        runtime.GOOS,
		AppName:     cfg.AppName,
		ProcessName: cfg.ProcessName,
	}
	flags := cmd.Flags()
	if flags.Changed("app") {
		opts.AppName = appFlag
	}
	if flags.Changed("process") {
		opts.ProcessName = processFlag
	}
	if flags.Changed("user") {
		opts.Username = userFlag
	}
	if flags.Changed("path") {
		opts.StoragePath = pathFlag
	}
	if path, err := opts.ResolvePath(); err == nil {
		opts.StoragePath = path
	} else {
		logger.Warnf("%v", err)
	}

	return &session{
		cfg:     cfg,
		env:     env,
		logger:  logger,
		console: ui.NewConsole(os.Stdout, logger),
		opts:    opts,
	}
}

func (s *session) store() (*storage.Store, error) {
	path, err := s.opts.ResolvePath()
	if err != nil {
		return nil, err
	}
	return storage.NewStore(path, s.logger), nil
}

func (s *session) close() {
	if err := s.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log: %v\n", err)
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := newSession(cmd, true)
	defer s.close()

	autoYes := s.env.Automated || s.cfg.AutoYes || yesFlag
	prompter := ui.NewPrompter(os.Stdin, s.console, autoYes).WithContext(ctx)
	guard := process.NewGuard(s.logger, process.WithPause(func(ctx context.Context, d time.Duration) error {
		return s.console.Pause(ctx, d, "waiting...")
	}))
	killGuard := app.NewKillGuard(guard, prompter, s.console, s.cfg.CloseAttempts, s.cfg.RetryDelay())

	a := app.New(s.console, prompter, killGuard, identity.NewGenerator(), s.logger)
	err := a.Run(ctx, s.opts)
	if err != nil && ctx.Err() != nil {
		// An interrupted prompt reads as a plain "no"; report the interrupt instead.
		err = ctx.Err()
		s.logger.Warnf("operation interrupted by user")
	}
	report(s.console, err)

	if !s.env.Automated && ctx.Err() == nil {
		prompter.WaitEnter("Press Enter to exit...")
	}
	if err != nil {
		return errReported
	}
	return nil
}

// report prints err in the form matching its kind.
func report(console *ui.Console, err error) {
	if err == nil {
		return
	}
	var (
		cfgErr *apperr.ConfigError
		sysErr *apperr.SystemError
	)
	switch {
	case errors.Is(err, app.ErrCancelled):
		return
	case errors.Is(err, context.Canceled):
		console.Warn("\nOperation cancelled by user")
	case errors.As(err, &cfgErr):
		console.Error("\nConfiguration error during %s: %v", cfgErr.Op, cfgErr.Err)
		console.Plain("File: %s", cfgErr.Path)
	case errors.As(err, &sysErr):
		console.Error("\nSystem error during %s: %v", sysErr.Op, sysErr.Err)
	default:
		console.Error("\nUnexpected error: %v", err)
	}
}

type setOutput struct {
	Path                   string `json:"path,omitempty" yaml:"path,omitempty"`
	identity.IdentifierSet `yaml:",inline"`
	DecodedMachineID       string `json:"decodedMachineId,omitempty" yaml:"decodedMachineId,omitempty"`
}

// writeSet prints set as text, json or yaml.
func writeSet(console *ui.Console, format, path string, set identity.IdentifierSet, decode bool) error {
	out := setOutput{Path: path, IdentifierSet: set}
	if decode && set.MachineID != "" {
		decoded, err := identity.DecodeMachineID(set.MachineID)
		if err != nil {
			return err
		}
		out.DecodedMachineID = decoded
	}

	switch format {
	case "", "text":
		if path != "" {
			console.Plain("Config location: %s", path)
		}
		console.ShowSet("Identifiers", set)
		if out.DecodedMachineID != "" {
			console.Plain("Decoded Machine ID: %s", out.DecodedMachineID)
		}
		return nil
	case "json":
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		return writeLine(console.Writer(), data)
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = console.Writer().Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q, want text, json or yaml", format)
	}
}

func writeLine(w io.Writer, data []byte) error {
	_, err := fmt.Fprintln(w, string(data))
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&appFlag, "app", "", "Name of the target application directory (default from config, \"Cursor\")")
	rootCmd.PersistentFlags().StringVar(&processFlag, "process", "", "Process name pattern passed to pgrep (default from config, \"cursor\")")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User whose storage file is reset (default $USER)")
	rootCmd.PersistentFlags().StringVar(&pathFlag, "path", "", "Use this storage.json instead of the per-OS location")
	rootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Answer yes to every prompt")

	for _, c := range []*cobra.Command{showCmd, generateCmd} {
		c.Flags().StringVar(&formatFlag, "format", "text", "Output format: text, json or yaml")
		c.Flags().BoolVar(&decodeFlag, "decode", false, "Also print the decoded machine id")
	}

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
