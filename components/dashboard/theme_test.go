package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemeCSSVariables(t *testing.T) {
	theme := &ThemeSelection{Tokens: map[string]string{"bg": "#000", "--text": "#fff", " ": "x"}}

	assert.Equal(t, map[string]string{"--bg": "#000", "--text": "#fff"}, theme.CSSVariables())
	assert.Equal(t, "--bg: #000; --text: #fff;", theme.CSSVariablesInline())

	var empty *ThemeSelection
	assert.Empty(t, empty.CSSVariablesInline())
}

func TestNormalizeThemeFillsDefaults(t *testing.T) {
	theme := normalizeTheme(&ThemeSelection{Name: "light", TextColor: "#111"})

	assert.Equal(t, "light", theme.Name)
	assert.Equal(t, "#111", theme.TextColor)
	assert.Equal(t, DefaultTheme().ChartTheme, theme.ChartTheme)
	assert.Equal(t, DefaultTheme().Palette, theme.Palette)
	assert.Equal(t, "wastedash-dark", normalizeTheme(nil).Name)
}

func TestPageAssets(t *testing.T) {
	got := pageAssets("https://cdn.example.com/assets", "westeros", []string{"world", "taiwan", "taiwan", ""})

	assert.Equal(t, []string{
		"https://cdn.example.com/assets/echarts.min.js",
		"https://cdn.example.com/assets/themes/westeros.js",
		"https://cdn.example.com/assets/maps/world.js",
		"https://cdn.example.com/assets/maps/taiwan.js",
	}, got)
	assert.Len(t, pageAssets(DefaultEChartsAssetsHost, "white", nil), 1)
}

func TestEChartsAssetsHostFromEnv(t *testing.T) {
	t.Setenv(envEChartsCDN, "https://static.example.com/echarts")
	assert.Equal(t, "https://static.example.com/echarts/", EChartsAssetsHost())

	t.Setenv(envEChartsCDN, "")
	assert.Equal(t, DefaultEChartsAssetsHost, EChartsAssetsHost())
}
