package helpers

import (
	"strings"
)

// AfterMarker returns the text following the last occurrence of marker,
// cut at the first terminator character. ok is false when marker is absent
// or nothing follows it.
func AfterMarker(s, marker, terminators string) (string, bool) {
	idx := strings.LastIndex(s, marker)
	if idx < 0 {
		return "", false
	}
	rest := s[idx+len(marker):]
	if cut := strings.IndexAny(rest, terminators); cut >= 0 {
		rest = rest[:cut]
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}
