package datafeed

import (
	"context"
	"os"

	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// FileSource reads a JSON dataset from disk on every load.
type FileSource struct {
	Path      string
	Validator dashboard.DatasetValidator
}

// NewFileSource validates with the dataset schema.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, Validator: dashboard.DefaultDatasetValidator()}
}

func (s *FileSource) Load(ctx context.Context) ([]dashboard.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, dashboard.DataUnavailable(err, s.Path)
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, dashboard.DataUnavailable(err, s.Path)
	}
	return dashboard.LoadDataset(raw, s.Path, s.Validator)
}
