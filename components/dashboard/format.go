package dashboard

import "github.com/shopspring/decimal"

const (
	percentPlaces   = 1
	perCapitaPlaces = 2
)

// RoundPercent rounds a percentage for display.
func RoundPercent(v float64) float64 {
	return roundTo(v, percentPlaces)
}

// RoundPerCapita rounds a per-capita figure for display.
func RoundPerCapita(v float64) float64 {
	return roundTo(v, perCapitaPlaces)
}

// FormatPercent renders v as "51.4%".
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(percentPlaces) + "%"
}

// FormatPerCapita renders v as "0.57 kg".
func FormatPerCapita(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(perCapitaPlaces) + " kg"
}

func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func roundAll(values []float64, places int32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = roundTo(v, places)
	}
	return out
}
