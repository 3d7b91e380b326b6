package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ChartKind selects the chart builder.
type ChartKind string

const (
	ChartDonut ChartKind = "donut"
	ChartPie   ChartKind = "pie"
	ChartLine  ChartKind = "line"
	ChartBar   ChartKind = "bar"
)

// SeriesType is the ECharts series type of one cartesian series.
type SeriesType string

const (
	SeriesBar  SeriesType = "bar"
	SeriesLine SeriesType = "line"
)

// ChartConfig is the complete, data-bearing description of one chart. A
// ChartRenderer replaces its previous configuration with it wholesale.
type ChartConfig struct {
	Kind     ChartKind      `json:"kind"`
	Title    string         `json:"title,omitempty"`
	Subtitle string         `json:"subtitle,omitempty"`
	XAxis    []string       `json:"x_axis,omitempty"`
	YAxis    AxisConfig     `json:"y_axis,omitempty"`
	Series   []SeriesConfig `json:"series,omitempty"`
	Slices   []SliceConfig  `json:"slices,omitempty"`
	Legend   bool           `json:"legend,omitempty"`
	// Tooltip is the ECharts tooltip trigger ("axis" or "item").
	Tooltip string `json:"tooltip,omitempty"`
}

// AxisConfig configures the value axis.
type AxisConfig struct {
	Name   string   `json:"name,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Suffix string   `json:"suffix,omitempty"`
}

// SeriesConfig is one bar or line series aligned with XAxis.
type SeriesConfig struct {
	Name   string     `json:"name"`
	Type   SeriesType `json:"type"`
	Stack  string     `json:"stack,omitempty"`
	Values []float64  `json:"values"`
	Color  string     `json:"color,omitempty"`
	Smooth bool       `json:"smooth,omitempty"`
	Area   bool       `json:"area,omitempty"`
	Width  float32    `json:"width,omitempty"`
}

// SliceConfig is one pie or donut slice.
type SliceConfig struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Validate checks the configuration is drawable by its builder.
func (cfg ChartConfig) Validate() error {
	switch cfg.Kind {
	case ChartDonut, ChartPie:
		if len(cfg.Series) > 0 {
			return fmt.Errorf("dashboard: %s chart takes slices, not series", cfg.Kind)
		}
	case ChartLine, ChartBar:
		for _, s := range cfg.Series {
			if len(s.Values) != len(cfg.XAxis) {
				return fmt.Errorf("dashboard: series %q has %d values for %d axis labels", s.Name, len(s.Values), len(cfg.XAxis))
			}
			if s.Type != SeriesBar && s.Type != SeriesLine {
				return fmt.Errorf("dashboard: series %q has unsupported type %q", s.Name, s.Type)
			}
			if cfg.Kind == ChartLine && s.Type == SeriesBar {
				return fmt.Errorf("dashboard: line chart cannot hold bar series %q", s.Name)
			}
		}
	default:
		return fmt.Errorf("dashboard: unsupported chart kind %q", cfg.Kind)
	}
	return nil
}

// Hash returns a deterministic digest of the configuration.
func (cfg ChartConfig) Hash() string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy.
func (cfg ChartConfig) Clone() ChartConfig {
	out := cfg
	out.XAxis = append([]string(nil), cfg.XAxis...)
	if cfg.YAxis.Min != nil {
		v := *cfg.YAxis.Min
		out.YAxis.Min = &v
	}
	if cfg.YAxis.Max != nil {
		v := *cfg.YAxis.Max
		out.YAxis.Max = &v
	}
	if cfg.Series != nil {
		out.Series = make([]SeriesConfig, len(cfg.Series))
		for i, s := range cfg.Series {
			s.Values = append([]float64(nil), s.Values...)
			out.Series[i] = s
		}
	}
	out.Slices = append([]SliceConfig(nil), cfg.Slices...)
	return out
}

func floatPtr(v float64) *float64 { return &v }
