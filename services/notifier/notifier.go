package notifier

import (
	"context"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/internal/crawler"
	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/publisher"
)

// Notifier delivers a batch of new listings
type Notifier interface {
	// Notify delivers listings; callers log the error and carry on
	Notify(ctx context.Context, listings []crawler.Listing) error

	// Name returns the notification mode
	Name() string
}

// New creates the notifier selected by cfg.NotifyMode.
// pub is only used in stream mode.
func New(cfg *config.Config, pub publisher.Publisher) (Notifier, error) {
	switch cfg.NotifyMode {
	case config.NotifyEmail:
		return NewEmailNotifier(cfg.SMTP, cfg.Criteria, cfg.RequestTimeout), nil
	case config.NotifyFile:
		return NewFileNotifier(cfg.ReportDir, cfg.Criteria), nil
	case config.NotifyStream:
		if pub == nil {
			return nil, scerrors.NewConfiguration("stream mode requires a publisher", nil)
		}
		return NewStreamNotifier(pub), nil
	default:
		return nil, scerrors.NewConfiguration("unknown notify mode "+cfg.NotifyMode, nil)
	}
}
