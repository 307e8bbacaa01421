package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"pocketbook/internal/backend"
	"pocketbook/internal/cli"
	"pocketbook/internal/config"
	apphttp "pocketbook/internal/http"
	"pocketbook/internal/i18n"
	applog "pocketbook/internal/log"
	"pocketbook/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	sess, err := session.New(ctx, session.Options{
		Store:     res.Store,
		Publisher: res.Publisher,
		Localizer: i18n.NewLocalizer(i18n.ParseLocale(cfg.DefaultLocale)),
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Session:            sess,
		Store:              res.Store,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting pocketbook server",
			"port", cfg.Port,
			applog.FieldBackend, backendCfg.Type.String(),
			applog.FieldLocale, cfg.DefaultLocale)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
