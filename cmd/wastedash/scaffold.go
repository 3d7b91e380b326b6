package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-wastedash/components/dashboard"
)

type scaffoldCmd struct {
	Title        string   `required:"" help:"Dashboard title."`
	ID           string   `help:"Dashboard id (defaults to the kebab-cased title)."`
	Caption      string   `help:"Caption shown under the charts."`
	Source       string   `required:"" help:"Dataset source (demo:<name>, file path or http(s) URL)."`
	Category     []string `required:"" help:"Category as key[:label[:color]] (repeat in legend order)."`
	Numerator    string   `help:"Category whose share is tracked over time."`
	Unit         string   `help:"Unit shown in tooltips."`
	View         []string `default:"breakdown,share_trend" help:"Chart views to bind, in container order."`
	List         bool     `help:"Add an entity list panel."`
	Map          bool     `help:"Add a marker map."`
	MapName      string   `name:"map-name" default:"world" help:"Registered geo map for the marker layer."`
	ViewModes    bool     `name:"view-modes" help:"Enable the long-term/one-year toggle."`
	ManifestPath string   `required:"" name:"manifest-path" type:"path" help:"Manifest YAML file to update."`
	Overwrite    bool     `help:"Replace an existing entry with the same id."`
}

var scaffoldViews = map[string]dashboard.ViewKind{
	string(dashboard.ViewBreakdown):   dashboard.ViewBreakdown,
	string(dashboard.ViewShareTrend):  dashboard.ViewShareTrend,
	string(dashboard.ViewStacked):     dashboard.ViewStacked,
	string(dashboard.ViewMultiLine):   dashboard.ViewMultiLine,
	string(dashboard.ViewComposition): dashboard.ViewComposition,
}

func (cmd *scaffoldCmd) Run(_ context.Context, _ *Globals) error {
	entry, err := cmd.entry()
	if err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("wastedash: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	replaced := false
	for idx := range doc.Dashboards {
		if doc.Dashboards[idx].ID != entry.ID {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("wastedash: manifest already defines dashboard %s (use --overwrite to replace)", entry.ID)
		}
		doc.Dashboards[idx] = entry
		replaced = true
	}
	if !replaced {
		doc.Dashboards = append(doc.Dashboards, entry)
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeFile(manifestPath, func(w io.Writer) error {
		return dashboard.EncodeManifest(w, doc)
	}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s\n", entry.ID, manifestPath)
	return nil
}

func (cmd *scaffoldCmd) entry() (dashboard.ManifestDashboard, error) {
	id := strings.TrimSpace(cmd.ID)
	if id == "" {
		id = strcase.ToKebab(cmd.Title)
	}
	if id == "" {
		return dashboard.ManifestDashboard{}, errors.New("wastedash: dashboard id is empty")
	}
	entry := dashboard.ManifestDashboard{
		ID:        id,
		Title:     cmd.Title,
		Caption:   cmd.Caption,
		Source:    cmd.Source,
		Numerator: cmd.Numerator,
		Unit:      cmd.Unit,
		ViewModes: cmd.ViewModes,
	}
	for _, raw := range cmd.Category {
		category, err := parseCategory(raw)
		if err != nil {
			return dashboard.ManifestDashboard{}, err
		}
		entry.Categories = append(entry.Categories, category)
	}
	for idx, name := range cmd.View {
		kind, ok := scaffoldViews[strings.TrimSpace(name)]
		if !ok {
			return dashboard.ManifestDashboard{}, fmt.Errorf("wastedash: unknown view %q", name)
		}
		entry.Charts = append(entry.Charts, dashboard.ChartBinding{
			Container: fmt.Sprintf("%s-chart-%d", id, idx+1),
			View:      kind,
		})
	}
	if cmd.List {
		entry.List = id + "-list"
	}
	if cmd.Map {
		entry.Map = id + "-map"
		entry.MapName = cmd.MapName
	}
	return entry, nil
}

func parseCategory(raw string) (dashboard.Category, error) {
	parts := strings.SplitN(raw, ":", 3)
	key := strcase.ToSnake(strings.TrimSpace(parts[0]))
	if key == "" {
		return dashboard.Category{}, fmt.Errorf("wastedash: category %q has no key", raw)
	}
	category := dashboard.Category{Key: key, Label: strcase.ToCase(key, strcase.TitleCase, ' ')}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		category.Label = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		category.Color = strings.TrimSpace(parts[2])
	}
	return category, nil
}

func loadOrInitManifest(path string) (*dashboard.ManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.ManifestDocument{
				Version:    dashboard.ManifestVersion,
				Dashboards: []dashboard.ManifestDashboard{},
				Source:     path,
			}, nil
		}
		return nil, fmt.Errorf("wastedash: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}
