package dashboard

import (
	"net/http"
	"os"
	"strings"
)

const (
	// DefaultEChartsAssetsHost is the public go-echarts assets bucket.
	DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// DefaultEChartsAssetsPath is the local path self-hosted assets are served from.
	DefaultEChartsAssetsPath = "/dashboard/assets/echarts/"
	// envEChartsCDN overrides the default assets host (e.g., to point at a CDN or self-hosted bucket).
	envEChartsCDN = "WASTEDASH_ECHARTS_CDN"
)

// EChartsAssetsHost returns the assets host, respecting WASTEDASH_ECHARTS_CDN if set.
func EChartsAssetsHost() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHost
}

// EChartsAssetsHandler serves a local copy of the ECharts runtime, themes and
// maps (the go-echarts-assets layout) from dir under prefix.
func EChartsAssetsHandler(prefix, dir string) http.Handler {
	if prefix == "" {
		prefix = DefaultEChartsAssetsPath
	}
	prefix = ensureTrailingSlash(prefix)
	return http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
}

// pageAssets lists the scripts a page needs: the runtime, the chart theme and
// every geo map used by a marker layer.
func pageAssets(host, theme string, maps []string) []string {
	host = ensureTrailingSlash(host)
	out := []string{host + "echarts.min.js"}
	if theme != "" && theme != "white" {
		out = append(out, host+"themes/"+theme+".js")
	}
	seen := map[string]struct{}{}
	for _, name := range maps {
		if _, ok := seen[name]; ok || name == "" {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, host+"maps/"+name+".js")
	}
	return out
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
