package reviews

import (
	"context"
	"errors"
)

// Sentinel errors shared by both store implementations.
var (
	ErrNotFound = errors.New("review record not found")
)

// Store persists the two denormalized review documents. The mirror between
// them is NOT a store-level constraint: it is maintained by Service through
// paired writes and repaired by Reconcile. Each method is a single atomic
// per-document operation so concurrent submissions for the same title
// cannot lose updates.
type Store interface {
	// GetTitle returns the per-title document. ErrNotFound when the title
	// has never been reviewed.
	GetTitle(ctx context.Context, mediaID string) (TitleReview, error)
	// AppendTitleEntry creates the title document if absent and appends the
	// entry unless the user already has one. Returns false (and no error)
	// when the entry was not appended because of the per-user guard.
	AppendTitleEntry(ctx context.Context, meta TitleMeta, e Entry) (bool, error)
	// RemoveTitleEntry removes the user's entry. Returns false when there
	// was nothing to remove.
	RemoveTitleEntry(ctx context.Context, mediaID, user string) (bool, error)
	// SetAverage stores the recomputed average; nil clears it (no reviews).
	SetAverage(ctx context.Context, mediaID string, avg *float64) error

	// GetHistory returns the per-user document. ErrNotFound for unknown users.
	GetHistory(ctx context.Context, user string) (UserHistory, error)
	// AppendHistoryEntry creates the history document if absent and appends
	// the entry unless the media id is already present.
	AppendHistoryEntry(ctx context.Context, user string, e HistoryEntry) (bool, error)
	// RemoveHistoryEntry removes the entry for a media id.
	RemoveHistoryEntry(ctx context.Context, user, mediaID string) (bool, error)
	// HistoryUsersFor lists users whose history references the media id.
	// The reconciler uses it to find one-sided mirror drift.
	HistoryUsersFor(ctx context.Context, mediaID string) ([]string, error)

	// TopRated returns up to limit titles ordered by average rating
	// descending, skipping titles with no reviews.
	TopRated(ctx context.Context, limit int) ([]TitleReview, error)
}
