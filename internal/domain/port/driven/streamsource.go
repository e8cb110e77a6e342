package driven

import (
	"context"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
)

// StreamSource defines the driven port for the upstream stream aggregator.
type StreamSource interface {
	// FetchStreams returns the ordered stream candidates for a content ID.
	// contentType is "movie" or "series"; for series the ID carries the
	// season/episode suffix ("tt123:1:2"). An empty upstream list is a
	// normal outcome, returned as an empty slice.
	FetchStreams(ctx context.Context, contentType, contentID string) ([]model.StreamDescriptor, error)
}
