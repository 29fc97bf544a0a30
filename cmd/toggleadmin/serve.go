package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-toggleadmin/internal/config"
	"github.com/goliatone/go-toggleadmin/internal/server"
	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/renderers/vanilla"
	"github.com/goliatone/go-toggleadmin/pkg/store"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin UI over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("addr") {
				overrides[config.Key("server", "addr")] = addr
			}
			if cmd.Flags().Changed("watch") {
				overrides[config.Key("data", "watch")] = watch
			}
			cfg, err := a.load(cmd, overrides)
			if err != nil {
				return err
			}
			logger, err := a.newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload strategy definitions when the data file changes")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	st, err := openStore(cfg.Data.Path, logger)
	if err != nil {
		return err
	}
	handler, err := newHandler(cfg, st, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Data.Watch {
		watcher := store.NewWatcher(cfg.Data.Path, st,
			store.WithDebounce(cfg.Data.Debounce),
			store.WithWatcherLogger(logger.Named("watcher")),
		)
		g.Go(func() error {
			// A broken watch only stops reloads; the server keeps serving.
			if err := watcher.Run(gctx); err != nil {
				logger.Error("watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("data", cfg.Data.Path))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("toggleadmin: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newHandler wires the HTTP server from configuration.
func newHandler(cfg config.Config, st server.Store, logger *zap.Logger) (*server.Server, error) {
	registry, err := newRegistry(logger, stylesheetURL(), cfg.Theme.TemplatesDir)
	if err != nil {
		return nil, err
	}

	auth := cfg.Auth
	opts := []server.Option{
		server.WithLogger(logger.Named("http")),
		server.WithPermissions(func(r *http.Request) feature.PermissionChecker {
			return auth.Permissions(r.Header.Get(auth.RoleHeader))
		}),
		server.WithTranslator(cfg.I18n.Locale, cfg.I18n.Translator()),
		server.WithAssets(assetPrefix, vanilla.AssetsFS()),
	}
	selector, err := cfg.Theme.Selector()
	if err != nil {
		return nil, err
	}
	if selector != nil {
		opts = append(opts, server.WithTheme(selector, cfg.Theme.Name, cfg.Theme.Variant))
	}
	return server.New(st, registry, opts...)
}
