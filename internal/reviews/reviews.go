// Package reviews implements the rating service: paired writes to the
// per-title and per-user review documents and the average recomputation
// that follows every mutation.
package reviews

import (
	"time"

	"github.com/example/review-platform/internal/media"
)

// Entry is a single user's rating and review text for one title.
type Entry struct {
	User        string    `json:"user"`
	Rating      float64   `json:"rating"`
	Review      string    `json:"review"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TitleMeta carries the catalog metadata stored alongside a title's entries.
type TitleMeta struct {
	MediaID   string     `json:"media_id"`
	Title     string     `json:"title"`
	Image     string     `json:"image"`
	MediaType media.Type `json:"media_type"`
}

// TitleReview is the per-title review document. AverageRating is nil while
// the title has no entries; it is never NaN and never zero-by-default.
type TitleReview struct {
	TitleMeta
	AverageRating *float64 `json:"average_rating,omitempty"`
	Entries       []Entry  `json:"entries"`
}

// HistoryEntry mirrors one contribution inside a user's review history.
type HistoryEntry struct {
	MediaID     string     `json:"media_id"`
	Title       string     `json:"title"`
	Image       string     `json:"image"`
	MediaType   media.Type `json:"media_type"`
	Rating      float64    `json:"rating"`
	Review      string     `json:"review"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// UserHistory is the per-user review document, the second half of the mirror.
type UserHistory struct {
	User    string         `json:"user"`
	Entries []HistoryEntry `json:"entries"`
}

// EntryFor returns the user's entry in a title document, if present.
func (t TitleReview) EntryFor(user string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.User == user {
			return e, true
		}
	}
	return Entry{}, false
}

// EntryFor returns the history entry for a media id, if present.
func (h UserHistory) EntryFor(mediaID string) (HistoryEntry, bool) {
	for _, e := range h.Entries {
		if e.MediaID == mediaID {
			return e, true
		}
	}
	return HistoryEntry{}, false
}
