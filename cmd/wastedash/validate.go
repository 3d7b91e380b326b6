package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-wastedash/components/dashboard"
)

type validateCmd struct {
	Files []string `arg:"" optional:"" type:"existingfile" help:"Dataset JSON files to validate (validates the manifest when empty)."`
}

func (cmd *validateCmd) Run(_ context.Context, g *Globals) error {
	if len(cmd.Files) == 0 {
		doc, err := g.manifest()
		if err != nil {
			return err
		}
		if err := doc.Validate(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ manifest declares %d dashboards\n", len(doc.Dashboards))
		return nil
	}
	validator := dashboard.DefaultDatasetValidator()
	var failed []error
	for _, path := range cmd.Files {
		raw, err := os.ReadFile(path)
		if err != nil {
			failed = append(failed, fmt.Errorf("wastedash: read %s: %w", path, err))
			continue
		}
		entities, err := dashboard.LoadDataset(raw, path, validator)
		if err != nil {
			fmt.Fprintf(os.Stdout, "✗ %s: %v\n", path, err)
			failed = append(failed, err)
			continue
		}
		fmt.Fprintf(os.Stdout, "✓ %s (%d entities)\n", path, len(entities))
	}
	return errors.Join(failed...)
}
