// Command quillcms is the operational CLI for a quillcms installation: it
// brings the storage schema up to date and moves per-weblog archives in and
// out of any configured backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quillcms/quillcms/pkg/backup"
	"github.com/quillcms/quillcms/pkg/config"
	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
	"github.com/quillcms/quillcms/pkg/store/postgres"
	"github.com/quillcms/quillcms/pkg/store/sqlite"
	"github.com/quillcms/quillcms/pkg/store/surreal"
)

// Version is the build-time version. Override with:
//
//	-ldflags "-X main.Version=v1.2.3"
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "quillcms",
		Short:         "quillcms storage administration",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"configuration file (defaults to a local SQLite database)")

	loadConfig := func() (*config.Config, zerolog.Logger, error) {
		cfg := config.Default()
		if cfgFile != "" {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return nil, zerolog.Nop(), err
			}
			cfg = loaded
		}
		level := zerolog.InfoLevel
		if cfg.LogLevel != "" {
			parsed, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return nil, zerolog.Nop(), fmt.Errorf("parsing log level: %w", err)
			}
			level = parsed
		}
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()
		return cfg, log, nil
	}

	root.AddCommand(newMigrateCmd(loadConfig))
	root.AddCommand(newBackupCmd(loadConfig))
	root.AddCommand(newRestoreCmd(loadConfig))
	return root
}

type configLoader func() (*config.Config, zerolog.Logger, error)

// openStore connects to the configured backend. The store is not started;
// callers decide whether StartUp (schema work and migrations) should run.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.New(cfg.SQLite.Path, log)
	case config.BackendPostgreSQL:
		return postgres.New(cfg.PostgreSQL.DSN, log)
	case config.BackendSurrealDB:
		return surreal.New(ctx, surreal.Config{
			URL:       cfg.SurrealDB.URL,
			Namespace: cfg.SurrealDB.Namespace,
			Database:  cfg.SurrealDB.Database,
			Username:  cfg.SurrealDB.Username,
			Password:  cfg.SurrealDB.Password,
			Retry:     cfg.SurrealDB.Retry.Policy(),
		}, log)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func withStartedStore(ctx context.Context, load configLoader, fn func(ctx context.Context, s store.Store, log zerolog.Logger) error) error {
	cfg, log, err := load()
	if err != nil {
		return err
	}
	s, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("closing store")
		}
	}()
	if err := s.StartUp(ctx); err != nil {
		return err
	}
	return fn(ctx, s, log)
}

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Ensure the schema exists and is at the current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStartedStore(cmd.Context(), load,
				func(ctx context.Context, s store.Store, log zerolog.Logger) error {
					log.Info().Str("version", store.CurrentVersion).Msg("schema is up to date")
					return nil
				})
		},
	}
}

func newBackupCmd(load configLoader) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "backup <web-log-id>",
		Short: "Dump a web log and everything it owns to an archive file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			webLogID, err := models.ParseWebLogID(args[0])
			if err != nil {
				return fmt.Errorf("parsing web log ID: %w", err)
			}
			if out == "" {
				out = args[0] + ".qcms"
			}
			return withStartedStore(cmd.Context(), load,
				func(ctx context.Context, s store.Store, log zerolog.Logger) error {
					if err := backup.Dump(ctx, s, webLogID, out); err != nil {
						return err
					}
					log.Info().Str("archive", out).Msg("backup written")
					return nil
				})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "archive file to write (default <web-log-id>.qcms)")
	return cmd
}

func newRestoreCmd(load configLoader) *cobra.Command {
	var newIdentity bool

	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Load an archive file into the configured backend",
		Long: `Load an archive file into the configured backend.

The archive format is backend-neutral: a dump taken from one backend restores
into any other. With --new-identity the content is re-homed under a fresh
web log ID (and fresh IDs for everything it owns), so an archive can be
restored next to its source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStartedStore(cmd.Context(), load,
				func(ctx context.Context, s store.Store, log zerolog.Logger) error {
					webLogID, err := backup.Load(ctx, s, args[0],
						backup.RestoreOptions{NewIdentity: newIdentity})
					if err != nil {
						return err
					}
					log.Info().Stringer("web_log", webLogID).Msg("archive restored")
					return nil
				})
		},
	}
	cmd.Flags().BoolVar(&newIdentity, "new-identity", false,
		"restore under a fresh web log ID, remapping all contained IDs")
	return cmd
}
