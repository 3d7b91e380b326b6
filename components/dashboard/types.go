package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entity is one selectable subject of a dashboard (country, plant, station, place).
type Entity struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Note    string   `json:"note,omitempty"`
	Coord   *Coord   `json:"coord,omitempty"`
	Records []Record `json:"records"`
	Monthly []Record `json:"monthly,omitempty"`
}

// Record is one reporting period for an entity.
type Record struct {
	Period    string             `json:"period"`
	Values    map[string]float64 `json:"values"`
	PerCapita *float64           `json:"per_capita,omitempty"`
	Total     *float64           `json:"total,omitempty"`
}

// Coord is a longitude/latitude pair.
type Coord [2]float64

// Lon returns the longitude.
func (c Coord) Lon() float64 { return c[0] }

// Lat returns the latitude.
func (c Coord) Lat() float64 { return c[1] }

// normalized swaps pairs that were written as [lat, lon].
func (c Coord) normalized() Coord {
	if abs(c[0]) <= 90 && abs(c[1]) > 90 {
		return Coord{c[1], c[0]}
	}
	return c
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ViewMode selects which record slice the derivations read.
type ViewMode int

const (
	// LongTerm reads the yearly record sequence.
	LongTerm ViewMode = iota
	// OneYear reads the monthly record sequence.
	OneYear
)

func (m ViewMode) String() string {
	switch m {
	case OneYear:
		return "one_year"
	default:
		return "long_term"
	}
}

// Toggled returns the other view mode.
func (m ViewMode) Toggled() ViewMode {
	if m == OneYear {
		return LongTerm
	}
	return OneYear
}

// ToggleCaption is the button caption offering the other mode.
func (m ViewMode) ToggleCaption() string {
	if m == OneYear {
		return "Change to Long-term"
	}
	return "Change to One-year"
}

// ParseViewMode accepts the names produced by String plus a few aliases.
func ParseViewMode(value string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(strings.NewReplacer("-", "_", " ", "_").Replace(value))) {
	case "", "long_term", "longterm", "yearly":
		return LongTerm, nil
	case "one_year", "oneyear", "monthly", "one_year_overview":
		return OneYear, nil
	default:
		return LongTerm, fmt.Errorf("dashboard: unknown view mode %q", value)
	}
}

func (m ViewMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *ViewMode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseViewMode(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// LoadState tracks whether a dashboard has data.
type LoadState string

const (
	StateUnloaded LoadState = "unloaded"
	StateLoaded   LoadState = "loaded"
	StateFailed   LoadState = "failed"
)

// PeriodValue is one point of a derived series.
type PeriodValue struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

func cloneEntity(e Entity) Entity {
	out := e
	if e.Coord != nil {
		c := *e.Coord
		out.Coord = &c
	}
	out.Records = cloneRecords(e.Records)
	out.Monthly = cloneRecords(e.Monthly)
	return out
}

func cloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec
		out[i].Values = cloneValues(rec.Values)
		if rec.PerCapita != nil {
			v := *rec.PerCapita
			out[i].PerCapita = &v
		}
		if rec.Total != nil {
			v := *rec.Total
			out[i].Total = &v
		}
	}
	return out
}

func cloneValues(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
