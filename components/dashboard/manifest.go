package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ManifestDocument models a YAML manifest describing a page of dashboards.
type ManifestDocument struct {
	Version    string              `json:"version" yaml:"version"`
	Title      string              `json:"title,omitempty" yaml:"title,omitempty"`
	Locale     string              `json:"locale,omitempty" yaml:"locale,omitempty"`
	Theme      *ThemeSelection     `json:"theme,omitempty" yaml:"theme,omitempty"`
	Dashboards []ManifestDashboard `json:"dashboards" yaml:"dashboards"`
	Source     string              `json:"-" yaml:"-"`
}

// ManifestDashboard describes one dashboard entry within a manifest.
type ManifestDashboard struct {
	ID             string         `json:"id" yaml:"id"`
	Title          string         `json:"title,omitempty" yaml:"title,omitempty"`
	Caption        string         `json:"caption,omitempty" yaml:"caption,omitempty"`
	Source         string         `json:"source" yaml:"source"`
	Categories     []Category     `json:"categories" yaml:"categories"`
	Numerator      string         `json:"numerator,omitempty" yaml:"numerator,omitempty"`
	Unit           string         `json:"unit,omitempty" yaml:"unit,omitempty"`
	AggregateLabel string         `json:"aggregate_label,omitempty" yaml:"aggregate_label,omitempty"`
	Charts         []ChartBinding `json:"charts" yaml:"charts"`
	List           string         `json:"list,omitempty" yaml:"list,omitempty"`
	Map            string         `json:"map,omitempty" yaml:"map,omitempty"`
	MapName        string         `json:"map_name,omitempty" yaml:"map_name,omitempty"`
	InitialEntity  string         `json:"initial_entity,omitempty" yaml:"initial_entity,omitempty"`
	ViewModes      bool           `json:"view_modes,omitempty" yaml:"view_modes,omitempty"`
	ShowAggregate  bool           `json:"show_aggregate,omitempty" yaml:"show_aggregate,omitempty"`
}

// Schema returns the category schema of the entry.
func (m ManifestDashboard) Schema() CategorySchema {
	return CategorySchema{
		Categories:     m.Categories,
		Numerator:      m.Numerator,
		AggregateLabel: m.AggregateLabel,
		Unit:           m.Unit,
	}
}

// Containers lists every surface container the entry binds.
func (m ManifestDashboard) Containers() []string {
	out := make([]string, 0, len(m.Charts)+2)
	for _, c := range m.Charts {
		out = append(out, c.Container)
	}
	if m.List != "" {
		out = append(out, m.List)
	}
	if m.Map != "" {
		out = append(out, m.Map)
	}
	return out
}

// Dashboard finds an entry by id.
func (doc *ManifestDocument) Dashboard(id string) (ManifestDashboard, bool) {
	for _, d := range doc.Dashboards {
		if d.ID == id {
			return d, true
		}
	}
	return ManifestDashboard{}, false
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*ManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes doc as YAML.
func EncodeManifest(w io.Writer, doc *ManifestDocument) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: encode manifest: %w", err)
	}
	return encoder.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *ManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	if len(doc.Dashboards) == 0 {
		return fmt.Errorf("dashboard: manifest declares no dashboards")
	}
	seen := make(map[string]struct{}, len(doc.Dashboards))
	containers := map[string]string{}
	for idx, entry := range doc.Dashboards {
		if entry.ID == "" {
			return fmt.Errorf("dashboard: manifest dashboard at index %d is missing id", idx)
		}
		if _, exists := seen[entry.ID]; exists {
			return fmt.Errorf("dashboard: manifest duplicates dashboard id %s", entry.ID)
		}
		seen[entry.ID] = struct{}{}
		if entry.Source == "" {
			return fmt.Errorf("dashboard: manifest dashboard %s missing source", entry.ID)
		}
		if len(entry.Charts) == 0 {
			return fmt.Errorf("dashboard: manifest dashboard %s declares no charts", entry.ID)
		}
		if err := entry.Schema().Validate(); err != nil {
			return fmt.Errorf("dashboard: manifest dashboard %s: %w", entry.ID, err)
		}
		for _, name := range entry.Containers() {
			if name == "" {
				return fmt.Errorf("dashboard: manifest dashboard %s has an unnamed container", entry.ID)
			}
			if owner, dup := containers[name]; dup {
				return fmt.Errorf("dashboard: container %s used by %s and %s", name, owner, entry.ID)
			}
			containers[name] = entry.ID
		}
	}
	return nil
}

func (doc *ManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
