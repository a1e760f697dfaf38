package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/taigrr/docvault/internal/backend"
	"github.com/taigrr/docvault/internal/config"
	"github.com/taigrr/docvault/internal/filesystem"
	"github.com/taigrr/docvault/internal/logging"
	"github.com/taigrr/docvault/internal/metrics"
	"github.com/taigrr/docvault/internal/pathfilter"
	"github.com/taigrr/docvault/internal/storage/sqlite"
	"github.com/taigrr/docvault/internal/types"
	"github.com/taigrr/docvault/internal/vault"
)

// app wires configuration, storage and the vault engine together.
type app struct {
	cfg     *config.Config
	backend backend.Backend
	manager *vault.Manager
	logger  *zap.Logger
	closers []io.Closer
}

func newApp(_ context.Context, v *viper.Viper, file string) (*app, error) {
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log.Logging())
	logger := logging.L()

	a := &app{cfg: cfg, logger: logger}
	switch cfg.BackendMode() {
	case backend.ModeLegacy:
		store, err := sqlite.Open(cfg.Database, cfg.VaultLocale())
		if err != nil {
			return nil, fmt.Errorf("opening legacy store: %w", err)
		}
		a.backend = store
		a.closers = append(a.closers, store)
	default:
		pf := pathfilter.New(&types.PathFilterConfig{
			IgnoredPatterns:   cfg.Ignore,
			AllowedExtensions: cfg.AllowedExtensions,
		})
		a.backend = filesystem.New(cfg.BaseDir, pf, cfg.VaultLocale())
	}

	a.manager = vault.NewManager(a.backend,
		vault.WithLocale(cfg.VaultLocale()),
		vault.WithLogger(logger),
	)
	logger.Info("docvault configured",
		zap.String("mode", string(cfg.BackendMode())),
		zap.String("base_dir", cfg.BaseDir),
		zap.String("locale", string(cfg.VaultLocale())),
	)
	return a, nil
}

// Close disposes every session and releases storage.
func (a *app) Close() {
	a.manager.CloseAll()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("closing storage", zap.Error(err))
		}
	}
	_ = logging.Sync()
}

// serve runs the MCP server on stdio until ctx is done.
func (a *app) serve(ctx context.Context) error {
	if a.cfg.Log.Output == "stdout" {
		return errors.New("log.output stdout would corrupt the stdio transport")
	}
	if a.cfg.MetricsAddr != "" {
		stop := a.serveMetrics(a.cfg.MetricsAddr)
		defer stop()
	}

	ctx = logging.IntoContext(ctx, a.logger.With(zap.String("transport", "stdio")))
	logging.WithContext(ctx).Info("serving MCP", zap.String("version", version))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "docvault",
		Version: version,
	}, nil)
	a.registerTools(server)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}
	return nil
}

func (a *app) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
