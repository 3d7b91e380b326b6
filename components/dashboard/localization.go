package dashboard

import "strings"

// ResolveLocalizedValue selects the best translation for the provided locale and falls back to the supplied value.
// Keys are matched case-insensitively, and language-region pairs (`zh-tw`) automatically fall back to their
// base language (`zh`) when present.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		if candidate == "" {
			continue
		}
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	if value, ok := values["default"]; ok && value != "" {
		return value
	}
	return fallback
}

// LabelFor returns the category label for the requested locale.
func (c Category) LabelFor(locale string) string {
	return ResolveLocalizedValue(c.LabelLocalized, locale, c.Label)
}

// Localized returns a copy of the schema with labels resolved for locale.
func (s CategorySchema) Localized(locale string) CategorySchema {
	out := s
	out.Categories = make([]Category, len(s.Categories))
	for i, c := range s.Categories {
		c.Label = c.LabelFor(locale)
		out.Categories[i] = c
	}
	return out
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		key = normalizeLocale(key)
		if key == "" || value == "" {
			continue
		}
		normalized[key] = value
	}
	return normalized
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	candidates = append(candidates, "default")
	return candidates
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(locale), "_", "-"))
}
