package model

import "strings"

// StreamDescriptor is one playable URL candidate returned by the upstream
// addon aggregator. Descriptors are immutable and consumed once per request.
type StreamDescriptor struct {
	Name        string
	Description string
	URL         string
}

// MatchesProvider reports whether the descriptor's name or description
// contains the given provider marker. The match is a case-sensitive
// substring check, mirroring how aggregator results label their source.
func (s StreamDescriptor) MatchesProvider(marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(s.Name, marker) || strings.Contains(s.Description, marker)
}
