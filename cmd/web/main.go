package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicing/internal/client"
	"invoicing/internal/config"
	"invoicing/internal/logger"
	"invoicing/internal/service"
	"invoicing/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:   "invoicing-web",
		Usage:  "server-rendered invoice UI backed by the invoice REST API",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend", Usage: "override BACKEND_URL"},
			&cli.StringFlag{Name: "port", Usage: "override PORT"},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.Load("3000")
	if err != nil {
		return err
	}
	if backend := c.String("backend"); backend != "" {
		cfg.Backend.URL = backend
	}
	if port := c.String("port"); port != "" {
		cfg.App.Port = port
	}

	log, err := logger.NewForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	api := client.New(cfg.Backend.URL,
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithLogger(log),
	)
	h := web.NewHandler(api,
		web.WithInvoiceNumbers(service.NewRandomInvoiceNumbers(nil)),
		web.WithTaxMode(cfg.App.TaxMode),
		web.WithLogger(log),
	)
	router := web.NewRouter(h, cfg.HTTP, log)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Web UI listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.Backend.URL),
			zap.String("tax_mode", string(cfg.App.TaxMode)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down web UI...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Web UI exited gracefully")
	return nil
}
