package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/handler/ws"
	mid "SqueezeScan/internal/middleware"
	internalrepo "SqueezeScan/internal/repository"
	"SqueezeScan/pkg/config"
	xhttp "SqueezeScan/pkg/http"
	xmw "SqueezeScan/pkg/http/middleware"
	applogger "SqueezeScan/pkg/logger"
	pkgqueue "SqueezeScan/pkg/queue"

	"github.com/labstack/echo/v4"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	hub        *ws.ProgressHub
	pipe       *mid.AlertPipeline
	queue      *pkgqueue.RedisQueue
	store      *internalrepo.CHBarStore
	pub        repository.AlertPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. queue may be nil
// when Redis is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	hub *ws.ProgressHub,
	pipe *mid.AlertPipeline,
	queue *pkgqueue.RedisQueue,
	store *internalrepo.CHBarStore,
	pub repository.AlertPublisher,
) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		handler: handler,
		hub:     hub,
		pipe:    pipe,
		queue:   queue,
		store:   store,
		pub:     pub,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.pipe.Start(ctx)

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.log.Error("scan queue start error", applogger.Error(err))
			return err
		}
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.httpServer.Echo().Use(echo.WrapMiddleware(xmw.Metrics(a.log, time.Second)))
	if a.hub != nil {
		a.hub.RegisterRoutes(a.httpServer.Echo())
	}
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("squeezescan started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("universe", a.cfg.Scanner.Symbols),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.log.Warn("scan queue stop error", applogger.Error(err))
		}
	}
	a.pipe.Stop()
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.log.Warn("alert publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("bar store close error", applogger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
	return nil
}
