package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/illarion/hush/internal/core"
	"github.com/illarion/hush/internal/settings"
	"github.com/illarion/hush/internal/storage"
	"github.com/illarion/hush/internal/timer"
	"github.com/spf13/cobra"
)

var (
	flagVault    string
	flagConfig   string
	flagLogLevel string
)

// App is what every command works with once the root command has run
type App struct {
	Settings     *settings.Settings
	SettingsPath string
	Engine       *core.Engine
	Logger       *slog.Logger
	Clipboard    *SystemClipboard
	Tokens       *PathTokens

	logFile io.Closer
}

var app *App

var rootCmd = &cobra.Command{
	Use:   "hush",
	Short: "hush is a local, password-protected credential vault",
	Long: `hush keeps titled login/password records in one encrypted file.

The last vault you opened is remembered, so most commands need only the
password. Set HUSH_PASSWORD to skip the prompt in scripts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		app = a
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagVault, "vault", "f", "", "vault file (default: last opened vault)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "settings file (default: $HUSH_CONFIG or <config dir>/hush/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (overrides settings)")
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context) int {
	defer func() {
		if app != nil {
			app.Close()
		}
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		HandleError(err)
		return 1
	}
	return 0
}

func newApp() (*App, error) {
	path := flagConfig
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	s, err := settings.Load(path)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		s.LogLevel = flagLogLevel
	}

	a := &App{
		Settings:     s,
		SettingsPath: path,
		Clipboard:    NewSystemClipboard(),
		Tokens:       NewPathTokens(s.Tokens),
	}
	if err := a.setupLogger(); err != nil {
		return nil, err
	}

	lastPath, err := storage.DefaultLastPath()
	if err != nil {
		return nil, err
	}

	a.Engine = core.New(
		core.WithLogger(a.Logger),
		core.WithLastPath(lastPath),
		core.WithClipboard(a.Clipboard),
		core.WithTokens(a.Tokens),
		core.WithExposure(s.ClipboardTimeout, timer.DefaultInterval),
	)
	return a, nil
}

func (a *App) setupLogger() error {
	level, err := settings.ParseLevel(a.Settings.LogLevel)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if a.Settings.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(a.Settings.LogFile), storage.DirPerm); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(a.Settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, storage.FilePerm)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		w = f
	}

	a.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.Logger)
	return nil
}

// Close ends the vault session and flushes the log
func (a *App) Close() {
	if a.Engine != nil {
		a.Engine.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
