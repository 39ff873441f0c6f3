package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"PriceCast/internal/domain/repository"
	"PriceCast/internal/usecase"
	pkgch "PriceCast/pkg/clickhouse"
	"PriceCast/pkg/config"
	xhttp "PriceCast/pkg/http"
	applogger "PriceCast/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	predictor   *usecase.Predictor
	pub         repository.EventPublisher
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	predictor *usecase.Predictor,
	pub repository.EventPublisher,
	chClient *pkgch.Client,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, predictor: predictor, pub: pub, chClient: chClient}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// TrainOnStartup fits the initial model with configured parameters. A failure is
// logged and leaves the API serving ModelNotTrained until POST /api/train succeeds.
func (a *App) TrainOnStartup(ctx context.Context) {
	if !a.cfg.Model.TrainOnStartup {
		return
	}
	_, err := a.predictor.Train(ctx, usecase.TrainParams{
		TestFraction: a.cfg.Model.TestFraction,
		Seed:         a.cfg.Model.Seed,
	})
	if err != nil {
		a.l.Error("startup training failed", applogger.Error(err))
	}
}

// Run starts the application and blocks until interrupted or the listener fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.httpServer = xhttp.NewServer(a.httpHandler, a.l,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.metricsPath()),
	)

	a.l.Info("pricecast starting",
		applogger.String("env", a.cfg.Environment),
		applogger.String("source", a.cfg.Data.Source),
		applogger.Int("observations", a.predictor.Store().Len()))
	errc := a.httpServer.Start()
	a.TrainOnStartup(ctx)

	var runErr error
	select {
	case err, ok := <-errc:
		if ok && err != nil {
			runErr = err
		}
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	}

	return errors.Join(runErr, a.shutdown())
}

func (a *App) metricsPath() string {
	if !a.cfg.Metrics.Enabled {
		return ""
	}
	return a.cfg.Metrics.Path
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down")
	var errs []error

	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.l.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}
