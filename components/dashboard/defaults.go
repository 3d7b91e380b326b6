package dashboard

import (
	"bytes"
	_ "embed"
	"time"
)

// DefaultChartCacheTTL is how long rendered snippets are reused when no cache is configured.
const DefaultChartCacheTTL = 5 * time.Minute

//go:embed manifests/default.yaml
var defaultManifestYAML []byte

// DefaultManifestYAML returns the raw embedded manifest, the four demo dashboards.
func DefaultManifestYAML() []byte {
	return append([]byte(nil), defaultManifestYAML...)
}

// DefaultManifest decodes the embedded manifest.
func DefaultManifest() (*ManifestDocument, error) {
	doc, err := DecodeManifest(bytes.NewReader(defaultManifestYAML))
	if err != nil {
		return nil, err
	}
	doc.Source = "embedded:default.yaml"
	return doc, nil
}
