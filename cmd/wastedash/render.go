package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/goliatone/go-wastedash/components/dashboard"
)

type renderCmd struct {
	Out    string            `short:"o" type:"path" default:"-" help:"Output HTML file (- for stdout)."`
	Select map[string]string `help:"Initial entity per dashboard (dashboard=entity)."`
	Mode   map[string]string `help:"Initial view mode per dashboard (dashboard=long_term|one_year)."`
}

func (cmd *renderCmd) Run(ctx context.Context, g *Globals) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	page, err := g.page(ctx, logger)
	if err != nil {
		return err
	}
	if err := cmd.apply(ctx, page); err != nil {
		return err
	}
	if cmd.Out == "-" || cmd.Out == "" {
		return page.Render(ctx, os.Stdout)
	}
	return writeFile(cmd.Out, func(w io.Writer) error {
		return page.Render(ctx, w)
	})
}

func (cmd *renderCmd) apply(ctx context.Context, page *dashboard.Page) error {
	for _, id := range sortedKeys(cmd.Select) {
		d, err := page.Dashboard(id)
		if err != nil {
			return err
		}
		if err := d.Select(ctx, cmd.Select[id]); err != nil {
			return err
		}
	}
	for _, id := range sortedKeys(cmd.Mode) {
		d, err := page.Dashboard(id)
		if err != nil {
			return err
		}
		mode, err := dashboard.ParseViewMode(cmd.Mode[id])
		if err != nil {
			return err
		}
		if err := d.SetViewMode(ctx, mode); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeFile writes through a temp file in the target directory and renames it
// into place.
func writeFile(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("wastedash: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("wastedash: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("wastedash: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("wastedash: write %s: %w", path, err)
	}
	return nil
}
