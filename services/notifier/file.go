package notifier

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/internal/crawler"
	"sjsage522/carwatcher/internal/criteria"
	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"
)

// FileNotifier writes each batch to a timestamped HTML report
type FileNotifier struct {
	dir      string
	criteria criteria.Criteria
	log      *logger.Logger
	now      func() time.Time
}

// NewFileNotifier creates a file notifier writing into dir
func NewFileNotifier(dir string, c criteria.Criteria) *FileNotifier {
	if dir == "" {
		dir = "."
	}
	return &FileNotifier{
		dir:      dir,
		criteria: c,
		log:      logger.ForNotifier(config.NotifyFile),
		now:      time.Now,
	}
}

// Name returns the notification mode
func (n *FileNotifier) Name() string {
	return config.NotifyFile
}

// Notify writes the report file
func (n *FileNotifier) Notify(ctx context.Context, listings []crawler.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	filename, html, err := RenderReportFile(listings, n.criteria, n.now())
	if err != nil {
		return scerrors.NewNotify("file", "failed to render report", err)
	}

	path := filepath.Join(n.dir, filename)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return scerrors.NewNotify("file", "failed to write report "+path, err)
	}

	n.log.Info().Int("count", len(listings)).Str("path", path).Msg("Report saved")
	return nil
}
