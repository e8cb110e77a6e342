package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
	"github.com/ericfisherdev/streamfinder/internal/domain/port/driven"
)

// Resolution is the outcome of a stream lookup. Found is false when the
// upstream returned no candidates; that is a normal result, not an error.
type Resolution struct {
	Found  bool
	Stream model.StreamDescriptor
}

// StreamService resolves a title to one playable stream via the upstream
// aggregator and the provider-preference selection policy.
type StreamService struct {
	source driven.StreamSource
	marker string
}

// NewStreamService creates a StreamService preferring descriptors that carry
// the given provider marker.
func NewStreamService(source driven.StreamSource, marker string) *StreamService {
	return &StreamService{source: source, marker: marker}
}

// Resolve fetches the candidate list for a title and picks one stream.
// season/episode are ignored unless contentType is "series". An upstream
// failure propagates as an error; an empty candidate list yields Found=false.
func (s *StreamService) Resolve(ctx context.Context, contentType, id string, season, episode int) (Resolution, error) {
	contentType = normalizeContentType(contentType)

	contentID := id
	if contentType == "series" && season > 0 && episode > 0 {
		contentID = fmt.Sprintf("%s:%d:%d", id, season, episode)
	}

	streams, err := s.source.FetchStreams(ctx, contentType, contentID)
	if err != nil {
		return Resolution{}, fmt.Errorf("fetch streams for %s/%s: %w", contentType, contentID, err)
	}

	stream, ok := SelectStream(streams, s.marker)
	if !ok {
		return Resolution{Found: false}, nil
	}
	return Resolution{Found: true, Stream: stream}, nil
}

// SelectStream scans candidates in upstream order and returns the first whose
// name or description contains the preferred-provider marker. If none match,
// the first candidate is returned unconditionally: the aggregator's ordering
// doesn't guarantee the preferred provider ranks first, and returning
// something playable beats returning nothing. For any non-empty input this
// always yields exactly one descriptor.
func SelectStream(streams []model.StreamDescriptor, marker string) (model.StreamDescriptor, bool) {
	if len(streams) == 0 {
		return model.StreamDescriptor{}, false
	}

	for _, s := range streams {
		if s.MatchesProvider(marker) {
			return s, true
		}
	}
	return streams[0], true
}

// normalizeContentType maps TMDB's "tv" naming onto the addon protocol's
// "series"; everything else resolves as a movie.
func normalizeContentType(t string) string {
	if t == "tv" || t == "series" {
		return "series"
	}
	return "movie"
}
