package dashboard

import (
	core "github.com/goliatone/go-wastedash/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Page is one viewer's set of dashboards.
type Page = core.Page

// ManifestDocument describes the dashboards of a page.
type ManifestDocument = core.ManifestDocument

// ViewMode selects between long-term and one-year views.
type ViewMode = core.ViewMode

const (
	LongTerm = core.LongTerm
	OneYear  = core.OneYear
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// DefaultManifest returns the embedded four-dashboard manifest.
func DefaultManifest() (*ManifestDocument, error) {
	return core.DefaultManifest()
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*ManifestDocument, error) {
	return core.ReadManifest(path)
}
