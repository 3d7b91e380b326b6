package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-wastedash/components/dashboard"
	"github.com/goliatone/go-wastedash/components/dashboard/commands"
	"github.com/goliatone/go-wastedash/components/dashboard/fiberapi"
	"github.com/goliatone/go-wastedash/components/dashboard/gorouter"
	"github.com/goliatone/go-wastedash/components/dashboard/httpapi"
)

type serveCmd struct {
	Addr        string        `default:":8080" env:"WASTEDASH_ADDR" help:"Listen address."`
	Engine      string        `default:"fiber" enum:"fiber,http,gorouter" env:"WASTEDASH_ENGINE" help:"HTTP engine (fiber, net/http or go-router)."`
	AssetsDir   string        `name:"assets-dir" type:"existingdir" env:"WASTEDASH_ASSETS_DIR" help:"Serve a local go-echarts-assets copy instead of the CDN."`
	SessionIdle time.Duration `name:"session-idle" default:"30m" env:"WASTEDASH_SESSION_IDLE" help:"Drop viewer sessions idle for this long."`
	PruneEvery  time.Duration `name:"prune-every" default:"1m" help:"Idle session sweep interval."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	doc, err := g.manifest()
	if err != nil {
		return err
	}
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return err
	}
	hook := dashboard.NewBroadcastHook()
	telemetry := dashboard.NewLogrusTelemetry(logger)
	opts := dashboard.Options{
		Manifest:    doc,
		Theme:       g.theme(doc),
		Locale:      g.Locale,
		Renderer:    renderer,
		RefreshHook: hook,
		Telemetry:   telemetry,
		Logger:      logger,
		SessionIdle: cmd.SessionIdle,
	}
	if cmd.AssetsDir != "" {
		opts.AssetsHost = dashboard.DefaultEChartsAssetsPath
	}
	service := dashboard.NewService(opts)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go pruneSessions(ctx, commands.NewPruneSessionsCommand(service, telemetry), cmd.PruneEvery, logger)

	log := logger.WithFields(logrus.Fields{"addr": cmd.Addr, "engine": cmd.Engine})
	log.Info("wastedash: serving dashboards")
	switch cmd.Engine {
	case "http":
		return cmd.serveHTTP(ctx, service, hook, telemetry)
	case "gorouter":
		return cmd.serveRouter(ctx, service, hook, telemetry)
	}
	return cmd.serveFiber(ctx, service, hook, telemetry)
}

func (cmd *serveCmd) serveFiber(ctx context.Context, service *dashboard.Service, hook *dashboard.BroadcastHook, telemetry dashboard.Telemetry) error {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	if err := fiberapi.Register(fiberapi.Config{
		Router:      app,
		Service:     service,
		Broadcast:   hook,
		Telemetry:   telemetry,
		AssetsDir:   cmd.AssetsDir,
		SessionIdle: cmd.SessionIdle,
	}); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()
	return app.Listen(cmd.Addr)
}

func (cmd *serveCmd) serveHTTP(ctx context.Context, service *dashboard.Service, hook *dashboard.BroadcastHook, telemetry dashboard.Telemetry) error {
	handlers := httpapi.NewHandlers(service, hook, telemetry)
	handlers.SessionIdle = cmd.SessionIdle
	mux := handlers.Routes()
	if cmd.AssetsDir != "" {
		mux.Handle(dashboard.DefaultEChartsAssetsPath, dashboard.EChartsAssetsHandler(dashboard.DefaultEChartsAssetsPath, cmd.AssetsDir))
	}
	return cmd.listen(ctx, mux)
}

func (cmd *serveCmd) serveRouter(ctx context.Context, service *dashboard.Service, hook *dashboard.BroadcastHook, telemetry dashboard.Telemetry) error {
	server := router.NewHTTPServer()
	if err := gorouter.Register(gorouter.Config[*httprouter.Router]{
		Router:      server.Router(),
		Service:     service,
		Broadcast:   hook,
		Telemetry:   telemetry,
		AssetsDir:   cmd.AssetsDir,
		SessionIdle: cmd.SessionIdle,
	}); err != nil {
		return err
	}
	return cmd.listen(ctx, server.WrappedRouter())
}

func (cmd *serveCmd) listen(ctx context.Context, handler http.Handler) error {
	server := &http.Server{Addr: cmd.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func pruneSessions(ctx context.Context, prune *commands.PruneSessionsCommand, every time.Duration, logger logrus.FieldLogger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := prune.Execute(ctx, commands.PruneSessionsInput{}); err != nil {
				logger.WithError(err).Warn("wastedash: prune sessions")
			}
		}
	}
}
