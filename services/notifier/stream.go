package notifier

import (
	"context"
	"encoding/json"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/internal/crawler"
	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/publisher"
)

// StreamMessageKey is the stream field carrying a base64 JSON listing
const StreamMessageKey = "b64_listing"

// StreamNotifier publishes every listing to the Redis streams
type StreamNotifier struct {
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewStreamNotifier creates a stream notifier
func NewStreamNotifier(pub publisher.Publisher) *StreamNotifier {
	return &StreamNotifier{
		publisher: pub,
		log:       logger.ForNotifier(config.NotifyStream),
	}
}

// Name returns the notification mode
func (n *StreamNotifier) Name() string {
	return config.NotifyStream
}

// Notify publishes listings one message each and trims the streams afterwards
func (n *StreamNotifier) Notify(ctx context.Context, listings []crawler.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	published := 0
	var firstErr error
	for _, listing := range listings {
		data, err := json.Marshal(listing)
		if err != nil {
			n.log.Error().Err(err).Str("id", listing.ID).Msg("Failed to marshal listing")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := n.publisher.Publish(ctx, StreamMessageKey, data); err != nil {
			n.log.Error().Err(err).Str("id", listing.ID).Msg("Failed to publish listing")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		published++
	}

	if err := n.publisher.TrimStreams(ctx); err != nil {
		n.log.Warn().Err(err).Msg("Failed to trim streams")
	}

	n.log.Info().Int("published", published).Int("total", len(listings)).Msg("Listings published")

	if firstErr != nil {
		return scerrors.NewNotify("stream", "failed to publish some listings", firstErr)
	}
	return nil
}
