package snapshot

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// File is one exported chart.
type File struct {
	Container string
	Path      string
	Skipped   string
}

// ExportDashboard writes one image per drawn chart of d into dir, named after
// the chart container. Charts showing a placeholder are skipped, as are
// degenerate ones; both are reported in the returned list.
func ExportDashboard(d *dashboard.Dashboard, format Format, dir string, opts Options, logger logrus.FieldLogger) ([]File, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var files []File
	for _, r := range d.Renderers() {
		file := File{Container: r.Container()}
		cfg, ok := r.Config()
		if !ok {
			file.Skipped = r.Placeholder()
			files = append(files, file)
			continue
		}
		var buf bytes.Buffer
		if err := Export(cfg, format, &buf, opts); err != nil {
			if dashboard.IsDegenerate(err) {
				logger.WithError(err).WithField("container", file.Container).Warn("snapshot: skipped chart")
				file.Skipped = err.Error()
				files = append(files, file)
				continue
			}
			return files, err
		}
		file.Path = filepath.Join(dir, file.Container+format.Ext())
		if err := os.WriteFile(file.Path, buf.Bytes(), 0o644); err != nil {
			return files, err
		}
		logger.WithField("path", file.Path).Debug("snapshot: wrote chart")
		files = append(files, file)
	}
	return files, nil
}
