package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/hibidash/internal/auth"
	"github.com/sadopc/hibidash/internal/config"
	"github.com/sadopc/hibidash/internal/export"
	"github.com/sadopc/hibidash/internal/logging"
	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
	"github.com/sadopc/hibidash/internal/tui"
	"github.com/sadopc/hibidash/internal/watch"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "A personal daily dashboard in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, configPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is <config dir>/hibidash/config.yaml)")
	cmd.PersistentFlags().String("db", "", "path to the SQLite database")
	cmd.Flags().Bool("watch", true, "reload when the database changes on disk")

	cmd.AddCommand(exportCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", config.AppName, version)
		},
	})
	return cmd
}

// env holds what every command opens.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	logs   io.Closer
	db     *store.Store
	auth   *auth.Service
}

func setup(cmd *cobra.Command, configPath string) (*env, error) {
	boot := logging.NewWithWriter(os.Stderr, slog.LevelWarn)
	cfg, err := config.NewLoader(boot).Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, logs, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	slog.SetDefault(logger)

	db, err := store.New(cfg.DB)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	svc, err := auth.New(db, auth.Options{
		SessionPath: cfg.Session,
		Secret:      cfg.Auth.Secret,
		TTL:         cfg.Auth.SessionTTL,
		Logger:      logger,
	})
	if err != nil {
		db.Close()
		logs.Close()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, logs: logs, db: db, auth: svc}, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.logger.Error("close database", "err", err)
	}
	e.logs.Close()
}

// currentUser restores the saved session. A missing or expired one is not an
// error; the UI shows the sign-in screen instead.
func (e *env) currentUser() (*store.User, error) {
	u, err := e.auth.CurrentUser()
	if errors.Is(err, auth.ErrNoSession) {
		return nil, nil
	}
	return u, err
}

func runTUI(cmd *cobra.Command, configPath string) error {
	e, err := setup(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.currentUser()
	if err != nil {
		return err
	}

	opts := tui.Options{
		Store:     e.db,
		Auth:      e.auth,
		Client:    query.NewClient(e.logger),
		User:      u,
		Logger:    e.logger,
		ExportDir: e.cfg.ExportDir,
	}

	if e.cfg.Watch {
		w, err := watch.New(e.cfg.DB, e.cfg.Debounce, e.logger)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			e.logger.Warn("database watch disabled", "err", err)
		} else {
			opts.Changes = w.Changes()
		}
		defer w.Stop()
	}

	e.logger.Info("starting", "version", version, "db", e.cfg.DB, "signed_in", u != nil)
	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func exportCmd(configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the signed-in user's data to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			e, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			u, err := e.currentUser()
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("not signed in: run %s first", config.AppName)
			}

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = e.cfg.ExportDir
			}
			path, err := export.Write(e.db, u, f, dir)
			if err != nil {
				return err
			}
			e.logger.Info("exported", "format", string(f), "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatYAML), "csv, json or yaml")
	cmd.Flags().String("dir", "", "output directory (default from config)")
	return cmd
}
