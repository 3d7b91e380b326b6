package dashboard

import (
	"fmt"

	"github.com/ettle/strcase"
)

// Category describes one quantity key of a record and how it is displayed.
type Category struct {
	Key            string            `json:"key" yaml:"key"`
	Label          string            `json:"label,omitempty" yaml:"label,omitempty"`
	LabelLocalized map[string]string `json:"label_localized,omitempty" yaml:"label_localized,omitempty"`
	Color          string            `json:"color,omitempty" yaml:"color,omitempty"`
}

// CategorySchema lists the categories a dashboard charts, in legend order.
type CategorySchema struct {
	Categories []Category `json:"categories" yaml:"categories"`
	// Numerator is the category whose share is tracked over time.
	Numerator string `json:"numerator,omitempty" yaml:"numerator,omitempty"`
	// AggregateLabel names the total series.
	AggregateLabel string `json:"aggregate_label,omitempty" yaml:"aggregate_label,omitempty"`
	// Unit is appended to axis names and tooltips.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Keys returns the category keys in order.
func (s CategorySchema) Keys() []string {
	keys := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		keys[i] = c.Key
	}
	return keys
}

// Category finds a category by key.
func (s CategorySchema) Category(key string) (Category, bool) {
	for _, c := range s.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Validate checks keys are present and unique and the numerator is known.
func (s CategorySchema) Validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("dashboard: category schema needs at least one category")
	}
	seen := make(map[string]struct{}, len(s.Categories))
	for idx, c := range s.Categories {
		if c.Key == "" {
			return fmt.Errorf("dashboard: category at index %d is missing key", idx)
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("dashboard: duplicate category %s", c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	if s.Numerator != "" {
		if _, ok := seen[s.Numerator]; !ok {
			return fmt.Errorf("dashboard: numerator %s is not a category", s.Numerator)
		}
	}
	return nil
}

func (s CategorySchema) aggregateLabel() string {
	if s.AggregateLabel != "" {
		return s.AggregateLabel
	}
	return "Total"
}

// withDefaults fills labels and colors from the key and palette.
func (s CategorySchema) withDefaults(palette []string) CategorySchema {
	out := s
	out.Categories = make([]Category, len(s.Categories))
	for i, c := range s.Categories {
		if c.Label == "" {
			c.Label = strcase.ToCase(c.Key, strcase.TitleCase, ' ')
		}
		if c.Color == "" && len(palette) > 0 {
			c.Color = palette[i%len(palette)]
		}
		c.LabelLocalized = normalizeLocaleMap(c.LabelLocalized)
		out.Categories[i] = c
	}
	return out
}
