package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-wastedash/components/dashboard"
	_ "github.com/goliatone/go-wastedash/pkg/datafeed"
)

// Globals are shared by every subcommand.
type Globals struct {
	Manifest   string `type:"path" env:"WASTEDASH_MANIFEST" help:"Manifest YAML describing the dashboards (embedded default when empty)."`
	Locale     string `env:"WASTEDASH_LOCALE" help:"Locale for category labels (e.g. zh-TW)."`
	ChartTheme string `name:"chart-theme" env:"WASTEDASH_CHART_THEME" help:"ECharts theme name overriding the manifest theme."`
	LogLevel   string `name:"log-level" default:"info" enum:"trace,debug,info,warn,error" env:"WASTEDASH_LOG_LEVEL" help:"Log level."`
	LogFormat  string `name:"log-format" default:"text" enum:"text,json" env:"WASTEDASH_LOG_FORMAT" help:"Log output format."`
}

type cli struct {
	Globals

	Serve    serveCmd    `cmd:"" default:"withargs" help:"Serve the dashboards page with live updates."`
	Render   renderCmd   `cmd:"" help:"Write the dashboards page as a standalone HTML file."`
	Snapshot snapshotCmd `cmd:"" help:"Export one dashboard's charts as SVG or PNG images."`
	Validate validateCmd `cmd:"" help:"Validate dataset JSON files or the manifest."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a dashboard entry to a manifest."`
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("wastedash"),
		kong.Description("Waste statistics dashboards."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	err := ctx.Run(&app.Globals)
	ctx.FatalIfErrorf(err)
}

func (g *Globals) logger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("wastedash: %w", err)
	}
	logger.SetLevel(level)
	if strings.EqualFold(g.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

func (g *Globals) manifest() (*dashboard.ManifestDocument, error) {
	if g.Manifest == "" {
		return dashboard.DefaultManifest()
	}
	return dashboard.ReadManifest(g.Manifest)
}

func (g *Globals) theme(doc *dashboard.ManifestDocument) *dashboard.ThemeSelection {
	if g.ChartTheme == "" {
		return nil
	}
	theme := doc.Theme
	if theme == nil {
		theme = dashboard.DefaultTheme()
	} else {
		copied := *theme
		theme = &copied
	}
	theme.ChartTheme = g.ChartTheme
	return theme
}

// page builds and loads a page for the offline commands. Dashboards that fail
// to load keep their placeholders.
func (g *Globals) page(ctx context.Context, logger logrus.FieldLogger) (*dashboard.Page, error) {
	doc, err := g.manifest()
	if err != nil {
		return nil, err
	}
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	page, err := dashboard.NewPage(doc, dashboard.PageOptions{
		Theme:     g.theme(doc),
		Locale:    g.Locale,
		Logger:    logger,
		Telemetry: dashboard.NewLogrusTelemetry(logger),
		Renderer:  renderer,
	})
	if err != nil {
		return nil, err
	}
	if err := page.Load(ctx); err != nil {
		logger.WithError(err).Warn("wastedash: some dashboards failed to load")
	}
	return page, nil
}
