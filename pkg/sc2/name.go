package sc2

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

const (
	nameEscape     = 31
	nameTerminator = 0
)

// DecodeName extracts the city name from a raw CNAM payload. Escape bytes
// are skipped, a NUL ends the name, and the remaining Latin-1 bytes are
// converted to UTF-8 and trimmed.
func DecodeName(b []byte) string {
	raw := make([]byte, 0, len(b))
	for _, c := range b {
		if c == nameTerminator {
			break
		}
		if c == nameEscape {
			continue
		}
		raw = append(raw, c)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// Every byte has an ISO-8859-1 mapping.
		return strings.TrimSpace(string(raw))
	}
	return strings.TrimSpace(string(s))
}
