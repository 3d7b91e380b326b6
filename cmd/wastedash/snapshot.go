package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-wastedash/components/dashboard"
	"github.com/goliatone/go-wastedash/pkg/snapshot"
)

type snapshotCmd struct {
	Dashboard string `arg:"" help:"Dashboard id (e.g. countries)."`
	Entity    string `help:"Entity to select before exporting."`
	Mode      string `help:"View mode (long_term or one_year)."`
	Period    string `help:"Period to focus in one-year views."`
	Aggregate bool   `help:"Include the aggregate series in multi-line views."`
	Format    string `default:"svg" enum:"svg,png" help:"Image format."`
	Width     int    `default:"800" help:"Image width in pixels."`
	Height    int    `default:"480" help:"Image height in pixels."`
	Out       string `short:"o" type:"path" default:"." help:"Output directory."`
}

func (cmd *snapshotCmd) Run(ctx context.Context, g *Globals) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	format, err := snapshot.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	page, err := g.page(ctx, logger)
	if err != nil {
		return err
	}
	d, err := page.Dashboard(cmd.Dashboard)
	if err != nil {
		return err
	}
	if err := cmd.apply(ctx, d); err != nil {
		return err
	}
	files, err := snapshot.ExportDashboard(d, format, cmd.Out, snapshot.Options{Width: cmd.Width, Height: cmd.Height}, logger)
	if err != nil {
		return err
	}
	for _, file := range files {
		if file.Skipped != "" {
			fmt.Fprintf(os.Stdout, "- %s skipped: %s\n", file.Container, file.Skipped)
			continue
		}
		fmt.Fprintf(os.Stdout, "✓ %s -> %s\n", file.Container, file.Path)
	}
	return nil
}

func (cmd *snapshotCmd) apply(ctx context.Context, d *dashboard.Dashboard) error {
	if cmd.Entity != "" {
		if err := d.Select(ctx, cmd.Entity); err != nil {
			return err
		}
	}
	if cmd.Mode != "" {
		mode, err := dashboard.ParseViewMode(cmd.Mode)
		if err != nil {
			return err
		}
		if err := d.SetViewMode(ctx, mode); err != nil {
			return err
		}
	}
	if cmd.Aggregate {
		if err := d.SetShowAggregate(ctx, true); err != nil {
			return err
		}
	}
	if cmd.Period != "" {
		return d.FocusPeriod(ctx, cmd.Period)
	}
	return nil
}
