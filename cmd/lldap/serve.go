package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/lldap/internal/backend"
	"github.com/KilimcininKorOglu/lldap/internal/config"
	"github.com/KilimcininKorOglu/lldap/internal/logging"
	"github.com/KilimcininKorOglu/lldap/internal/server"
)

const redisPingTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		configFile string
		address    string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the LDAP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			// Command-line flags take precedence over file and environment.
			if address != "" {
				cfg.Server.Address = address
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	return cmd
}

// runServer wires logger, backend and directory into a server and blocks
// until ctx is cancelled or the listener fails.
func runServer(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer func() { _ = logger.Sync() }()

	be, closeBackend, err := buildBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	dir, err := buildDirectory(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(
		server.WithBackend(be),
		server.WithDirectory(dir),
		server.WithLogger(logger),
		server.WithMaxConnections(cfg.Server.MaxConnections),
		server.WithReadTimeout(cfg.Server.ReadTimeout),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
	)
	if err != nil {
		return errors.Wrap(err, "create server")
	}

	logger.Info("starting lldap",
		"version", version,
		"address", cfg.Server.Address,
		"backend", cfg.Backend.Type)

	if err := srv.ListenAndServe(ctx, cfg.Server.Address); err != nil {
		logger.Error("server failed", "error", err.Error())
		return err
	}

	logger.Info("lldap stopped")
	return nil
}

// buildBackend creates the configured credential store. The returned func
// releases its resources.
func buildBackend(ctx context.Context, cfg *config.Config, logger logging.Logger) (backend.Backend, func(), error) {
	switch strings.ToLower(cfg.Backend.Type) {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Backend.Redis.Address,
			Password: cfg.Backend.Redis.Password,
			DB:       cfg.Backend.Redis.DB,
		})
		closeClient := func() { _ = client.Close() }

		rb := backend.NewRedisBackend(client, cfg.Backend.Redis.KeyPrefix)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rb.Ping(pingCtx); err != nil {
			closeClient()
			return nil, nil, err
		}

		if cfg.Directory.RootDN != "" {
			if err := rb.SetPassword(ctx, cfg.Directory.RootDN, cfg.Directory.RootPassword); err != nil {
				closeClient()
				return nil, nil, errors.Wrap(err, "seed root user")
			}
		}

		logger.Info("using redis backend",
			"address", cfg.Backend.Redis.Address,
			"db", cfg.Backend.Redis.DB)
		return rb, closeClient, nil

	case config.BackendMemory:
		mem := backend.NewMemoryBackend()
		if cfg.Directory.RootDN != "" {
			if err := mem.AddUser(cfg.Directory.RootDN, cfg.Directory.RootPassword); err != nil {
				return nil, nil, errors.Wrap(err, "add root user")
			}
		}
		if cfg.Backend.UsersFile != "" {
			n, err := backend.LoadUsersFile(cfg.Backend.UsersFile, mem)
			if err != nil {
				return nil, nil, err
			}
			logger.Info("loaded users file", "file", cfg.Backend.UsersFile, "users", n)
		}

		logger.Info("using memory backend", "users", mem.Len())
		return mem, func() {}, nil

	default:
		return nil, nil, errors.Errorf("unknown backend type %q", cfg.Backend.Type)
	}
}

// buildDirectory creates the entry source for searches.
func buildDirectory(cfg *config.Config, logger logging.Logger) (*backend.StaticDirectory, error) {
	if cfg.Directory.EntriesFile == "" {
		return backend.NewStaticDirectory(backend.DefaultEntries()...), nil
	}

	entries, err := backend.LoadEntriesFile(cfg.Directory.EntriesFile)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !backend.IsUnder(e.DN, cfg.Directory.BaseDN) {
			return nil, errors.Errorf("entries file %s: entry %q is outside base DN %q",
				cfg.Directory.EntriesFile, e.DN, cfg.Directory.BaseDN)
		}
	}
	logger.Info("loaded entries file", "file", cfg.Directory.EntriesFile, "entries", len(entries))
	return backend.NewStaticDirectory(entries...), nil
}
