package dashboard

// KPI is one headline figure shown above the charts.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Header summarizes the selected entity.
type Header struct {
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle,omitempty"`
	KPIs          []KPI  `json:"kpis,omitempty"`
	ToggleCaption string `json:"toggle_caption,omitempty"`
}

func buildHeader(e Entity, mode ViewMode, schema CategorySchema, caption string, viewModes bool) Header {
	h := Header{Title: e.Name}
	periods := Periods(e, mode)
	if len(periods) > 0 {
		h.Subtitle = periods[0] + "–" + periods[len(periods)-1]
		if caption != "" {
			h.Subtitle += " · " + caption
		}
	} else {
		h.Subtitle = caption
	}
	if viewModes {
		h.ToggleCaption = mode.ToggleCaption()
	}
	latest, ok := LatestRecord(e, mode)
	if !ok {
		return h
	}
	if schema.Numerator != "" {
		label := schema.Numerator
		if c, found := schema.Category(schema.Numerator); found {
			label = c.Label
		}
		h.KPIs = append(h.KPIs, KPI{Label: label + " share", Value: FormatPercent(Share(latest.Values, schema.Numerator))})
	}
	if latest.PerCapita != nil {
		h.KPIs = append(h.KPIs, KPI{Label: "Per capita", Value: FormatPerCapita(*latest.PerCapita)})
	}
	return h
}
