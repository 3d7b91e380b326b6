package dashboard

import "github.com/shopspring/decimal"

// Records returns the record slice the view mode reads.
func Records(e Entity, mode ViewMode) []Record {
	if mode == OneYear {
		return e.Monthly
	}
	return e.Records
}

// Periods returns the period labels of the records for mode, in order.
func Periods(e Entity, mode ViewMode) []string {
	records := Records(e, mode)
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Period
	}
	return out
}

// LatestBreakdown returns the category values of the chronologically last
// record. An entity without records yields an empty map.
func LatestBreakdown(e Entity, mode ViewMode) map[string]float64 {
	records := Records(e, mode)
	if len(records) == 0 {
		return map[string]float64{}
	}
	return cloneValues(records[len(records)-1].Values)
}

// LatestRecord returns the last record for mode.
func LatestRecord(e Entity, mode ViewMode) (Record, bool) {
	records := Records(e, mode)
	if len(records) == 0 {
		return Record{}, false
	}
	return records[len(records)-1], true
}

// PercentageOverTime computes, per record, numerator / sum(all categories) * 100.
// Records whose categories sum to zero yield 0.
func PercentageOverTime(e Entity, numerator string, mode ViewMode) []PeriodValue {
	records := Records(e, mode)
	out := make([]PeriodValue, len(records))
	for i, rec := range records {
		out[i] = PeriodValue{Period: rec.Period, Value: Share(rec.Values, numerator)}
	}
	return out
}

// Share returns values[key] as a percentage of the sum of values, 0 for a zero sum.
func Share(values map[string]float64, key string) float64 {
	sum := sumValues(values)
	if sum == 0 {
		return 0
	}
	return values[key] / sum * 100
}

// StackedSeriesByCategory returns one sequence per requested category, each as
// long as the record slice and aligned by index. Missing keys count as zero.
func StackedSeriesByCategory(e Entity, categories []string, mode ViewMode) map[string][]float64 {
	records := Records(e, mode)
	out := make(map[string][]float64, len(categories))
	for _, key := range categories {
		series := make([]float64, len(records))
		for i, rec := range records {
			series[i] = rec.Values[key]
		}
		out[key] = series
	}
	return out
}

// AggregateTotals returns the reported total of each record, or the sum of its
// categories when no total was reported.
func AggregateTotals(e Entity, mode ViewMode) []float64 {
	records := Records(e, mode)
	out := make([]float64, len(records))
	for i, rec := range records {
		if rec.Total != nil {
			out[i] = *rec.Total
			continue
		}
		out[i] = sumValues(rec.Values)
	}
	return out
}

// SliceAt returns the category values of the record for period.
func SliceAt(e Entity, mode ViewMode, period string) (map[string]float64, bool) {
	for _, rec := range Records(e, mode) {
		if rec.Period == period {
			return cloneValues(rec.Values), true
		}
	}
	return nil, false
}

// sumValues adds in decimal so the result does not depend on map iteration
// order.
func sumValues(values map[string]float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.InexactFloat64()
}
