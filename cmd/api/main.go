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

	"invoicing/internal/config"
	"invoicing/internal/database"
	"invoicing/internal/handler"
	"invoicing/internal/logger"
	"invoicing/internal/repository"
	"invoicing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:  "invoicing-api",
		Usage: "reference backend for the invoice REST API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve /api/invoices and /api/company",
				Action: serve,
			},
			{
				Name:  "purge",
				Usage: "delete every stored invoice",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "skip the confirmation guard"},
				},
				Action: purge,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type deps struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap() (*deps, error) {
	cfg, err := config.Load("8000")
	if err != nil {
		return nil, err
	}
	log, err := logger.NewForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	db, err := database.NewConnection(cfg.Database.Driver, cfg.Database.DSN(), log)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	log.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
	return &deps{cfg: cfg, log: log, db: db}, nil
}

func serve(_ *cli.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(a.db)
	invoiceService := service.NewInvoiceService(repository.NewInvoiceRepository(a.db), txManager, a.log)
	companyService := service.NewCompanyService(repository.NewCompanyRepository(a.db), txManager, a.log)
	router := handler.NewRouter(invoiceService, companyService, a.cfg.HTTP, a.log)

	srv := &http.Server{
		Addr:              ":" + a.cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server listening", zap.String("addr", srv.Addr))
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

	a.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("Server exited gracefully")
	return nil
}

func purge(c *cli.Context) error {
	if !c.Bool("yes") {
		return cli.Exit("refusing to delete every invoice without --yes", 2)
	}
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	invoiceService := service.NewInvoiceService(repository.NewInvoiceRepository(a.db), repository.NewTransactionManager(a.db), a.log)
	n, err := invoiceService.PurgeInvoices(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted %d invoices\n", n)
	return nil
}
