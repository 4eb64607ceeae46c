// Package media defines the media kinds the platform reviews and the
// summary shape returned by the external catalogs.
package media

import (
	"fmt"
	"strings"
	"time"
)

// Type is the tagged media kind. Every operation that used to branch on a
// raw string dispatches through this type instead.
type Type string

const (
	Movie Type = "movie"
	Book  Type = "book"
	Anime Type = "anime"
	Manga Type = "manga"
)

// Types lists all supported media kinds in display order.
func Types() []Type {
	return []Type{Movie, Book, Anime, Manga}
}

// ParseType validates a user-supplied media type.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case Movie, Book, Anime, Manga:
		return t, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

func (t Type) String() string { return string(t) }

// Summary is the minimal shape every external catalog returns for a hit.
type Summary struct {
	MediaID  string `json:"media_id"`
	Title    string `json:"title"`
	Image    string `json:"image"`
	Type     Type   `json:"media_type"`
	Year     string `json:"year,omitempty"`
	Synopsis string `json:"synopsis,omitempty"`
}

// NormalizeImageURL rewrites http and protocol-relative image URLs to https.
// The upstream catalogs occasionally return protocol-relative forms which
// break under a strict content security policy.
func NormalizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "http://"):
		return "https://" + strings.TrimPrefix(raw, "http://")
	default:
		return raw
	}
}

// Timestamp trims a time to UTC second precision so entries survive a JSON
// round trip through the store byte-identical.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
