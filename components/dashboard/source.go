package dashboard

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
)

// DataSource supplies the entities of one dashboard. Implementations either
// return embedded data or perform a single read-only fetch.
type DataSource interface {
	Load(ctx context.Context) ([]Entity, error)
}

// SourceFunc adapts a function into a DataSource.
type SourceFunc func(ctx context.Context) ([]Entity, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) ([]Entity, error) {
	return f(ctx)
}

// StaticSource serves a fixed, normalized entity list.
type StaticSource struct {
	entities []Entity
}

// NewStaticSource normalizes the entities once and serves copies of them.
func NewStaticSource(entities ...Entity) (*StaticSource, error) {
	normalized, err := NormalizeEntities(entities)
	if err != nil {
		return nil, err
	}
	return &StaticSource{entities: normalized}, nil
}

// Load returns a copy of the stored entities.
func (s *StaticSource) Load(ctx context.Context) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Entity, len(s.entities))
	for i, e := range s.entities {
		out[i] = cloneEntity(e)
	}
	return out, nil
}

// ReaderSource decodes a JSON dataset from a reader opened per load.
type ReaderSource struct {
	Name      string
	Open      func(ctx context.Context) (io.ReadCloser, error)
	Validator DatasetValidator
}

// Load opens, validates and decodes the dataset.
func (s ReaderSource) Load(ctx context.Context) ([]Entity, error) {
	if s.Open == nil {
		return nil, DataUnavailable(fmt.Errorf("dashboard: reader source %s has no opener", s.Name), s.Name)
	}
	rc, err := s.Open(ctx)
	if err != nil {
		return nil, DataUnavailable(err, s.Name)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, DataUnavailable(err, s.Name)
	}
	return LoadDataset(raw, s.Name, s.Validator)
}

// LoadDataset validates raw JSON (when a validator is given) and decodes it.
// Every failure is reported in the data-unavailable category.
func LoadDataset(raw []byte, source string, validator DatasetValidator) ([]Entity, error) {
	if validator != nil {
		if err := validator.ValidateDataset(raw); err != nil {
			return nil, DataUnavailable(err, source)
		}
	}
	entities, err := DecodeDataset(bytes.NewReader(raw))
	if err != nil {
		return nil, DataUnavailable(err, source)
	}
	return entities, nil
}

//go:embed data/*.json
var demoData embed.FS

// DemoDatasets lists the names of the embedded demo datasets.
func DemoDatasets() []string {
	entries, err := demoData.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// DemoSource serves one of the embedded demo datasets.
func DemoSource(name string) DataSource {
	return ReaderSource{
		Name: "demo:" + name,
		Open: func(context.Context) (io.ReadCloser, error) {
			f, err := demoData.Open("data/" + name + ".json")
			if err != nil {
				return nil, fmt.Errorf("dashboard: demo dataset %s: %w", name, err)
			}
			return f, nil
		},
		Validator: defaultDatasetValidator,
	}
}
