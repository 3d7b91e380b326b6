package dashboard

import (
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/types"
)

// ThemeSelection carries the page tokens and chart styling shared by every dashboard of a page.
type ThemeSelection struct {
	Name       string            `json:"name" yaml:"name"`
	ChartTheme string            `json:"chart_theme,omitempty" yaml:"chart_theme,omitempty"`
	Tokens     map[string]string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	// Palette colors categories that do not declare their own color.
	Palette []string `json:"palette,omitempty" yaml:"palette,omitempty"`
	// TextColor is used for chart titles, legends and axis labels.
	TextColor string `json:"text_color,omitempty" yaml:"text_color,omitempty"`
	// MutedColor is used for split lines and inactive legend entries.
	MutedColor string `json:"muted_color,omitempty" yaml:"muted_color,omitempty"`
	// Background is the chart background color.
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
}

// DefaultTheme is the dark green theme of the waste statistics page.
func DefaultTheme() *ThemeSelection {
	return &ThemeSelection{
		Name:       "wastedash-dark",
		ChartTheme: types.ThemeWesteros,
		Tokens: map[string]string{
			"bg":      "#0A3033",
			"text":    "#EFF4F7",
			"accent":  "#A6D536",
			"accent2": "#6EBE88",
			"warm":    "#E6C24A",
		},
		Palette:    []string{"#A6D536", "#0f9d58", "#85D24B", "#6EBE88", "#EFF4F7", "#E6C24A"},
		TextColor:  "#EFF4F7",
		MutedColor: "rgba(239,244,247,0.12)",
		Background: "transparent",
	}
}

// CSSVariables normalizes token keys into CSS variable names.
func (theme *ThemeSelection) CSSVariables() map[string]string {
	if theme == nil || len(theme.Tokens) == 0 {
		return nil
	}
	vars := make(map[string]string, len(theme.Tokens))
	for key, value := range theme.Tokens {
		name := normalizeCSSVariable(key)
		if name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}

// CSSVariablesInline renders the CSS variable map as a style string.
func (theme *ThemeSelection) CSSVariablesInline() string {
	vars := theme.CSSVariables()
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for _, key := range keys {
		if vars[key] == "" {
			continue
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(vars[key])
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

func normalizeCSSVariable(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + name
}

func cloneThemeSelection(selection *ThemeSelection) *ThemeSelection {
	if selection == nil {
		return nil
	}
	cloned := *selection
	if len(selection.Tokens) > 0 {
		cloned.Tokens = make(map[string]string, len(selection.Tokens))
		for key, value := range selection.Tokens {
			cloned.Tokens[key] = value
		}
	}
	cloned.Palette = append([]string(nil), selection.Palette...)
	return &cloned
}

func normalizeTheme(theme *ThemeSelection) *ThemeSelection {
	if theme == nil {
		return DefaultTheme()
	}
	out := cloneThemeSelection(theme)
	defaults := DefaultTheme()
	if out.ChartTheme == "" {
		out.ChartTheme = defaults.ChartTheme
	}
	if len(out.Palette) == 0 {
		out.Palette = defaults.Palette
	}
	if out.TextColor == "" {
		out.TextColor = defaults.TextColor
	}
	if out.MutedColor == "" {
		out.MutedColor = defaults.MutedColor
	}
	if out.Background == "" {
		out.Background = defaults.Background
	}
	return out
}
