package datafeed

import (
	"strings"

	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

func init() {
	dashboard.RegisterRegistryHook(Register)
}

// Register adds the "file", "http" and "https" source schemes to reg.
func Register(reg *dashboard.Registry) error {
	if err := reg.RegisterSource("file", openFile); err != nil {
		return err
	}
	for _, scheme := range []string{"http", "https"} {
		if err := reg.RegisterSource(scheme, openHTTP); err != nil {
			return err
		}
	}
	return nil
}

func openFile(ref string) (dashboard.DataSource, error) {
	path := strings.TrimPrefix(strings.TrimSpace(ref), "file:")
	path = strings.TrimPrefix(path, "//")
	return NewFileSource(path), nil
}

func openHTTP(ref string) (dashboard.DataSource, error) {
	return NewHTTPSource(HTTPConfig{URL: strings.TrimSpace(ref)})
}
