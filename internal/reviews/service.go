package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/example/review-platform/internal/media"
	"github.com/example/review-platform/internal/platform/events"
)

// ErrInvalidRating rejects submissions outside the accepted scale.
var ErrInvalidRating = errors.New("rating must be between 0 and 10")

// Service owns all mutations of the two review documents. It writes the
// per-title record first (nothing is reported as success before that write
// lands), mirrors the entry into the user's history second, and recomputes
// the average last. The steps are deliberately not one transaction: each is
// idempotent and the reconciler can replay them from the title record.
type Service struct {
	store Store
	pub   *events.Publisher
	log   *zap.Logger
}

func NewService(store Store, pub *events.Publisher, log *zap.Logger) *Service {
	return &Service{store: store, pub: pub, log: log}
}

// Submission is one user's rating and review for a title, together with the
// catalog metadata needed to create the title record on first review.
// Review text must already be HTML-stripped by the validation layer.
type Submission struct {
	User      string
	MediaID   string
	Title     string
	Image     string
	MediaType media.Type
	Rating    float64
	Review    string
}

func (sub Submission) validate() error {
	if sub.Rating < 0 || sub.Rating > 10 {
		return ErrInvalidRating
	}
	return nil
}

func (sub Submission) meta() TitleMeta {
	return TitleMeta{
		MediaID:   sub.MediaID,
		Title:     sub.Title,
		Image:     media.NormalizeImageURL(sub.Image),
		MediaType: sub.MediaType,
	}
}

// Submit appends the user's entry to both documents unless one exists in
// either record already; a duplicate is a no-op, not an error, and Submit
// reports created=false. Use Edit to change an existing entry.
func (s *Service) Submit(ctx context.Context, sub Submission) (bool, error) {
	if err := sub.validate(); err != nil {
		return false, err
	}

	if exists, err := s.hasEntry(ctx, sub.User, sub.MediaID); err != nil {
		return false, err
	} else if exists {
		return false, nil
	}

	now := media.Timestamp(time.Now())
	meta := sub.meta()
	created, err := s.store.AppendTitleEntry(ctx, meta, Entry{
		User:        sub.User,
		Rating:      sub.Rating,
		Review:      sub.Review,
		SubmittedAt: now,
	})
	if err != nil {
		return false, fmt.Errorf("append title entry: %w", err)
	}
	if !created {
		// Lost the race to a concurrent submission by the same user.
		return false, nil
	}

	s.mirrorToHistory(ctx, sub, meta, now)
	s.recomputeAverage(ctx, sub.MediaID)
	s.pub.Publish(events.SubjectReviewSubmitted, "review_submitted", sub.MediaID, sub.User, nil)
	return true, nil
}

// Edit replaces the user's entry in both documents and recomputes the
// average. Editing a title the user never reviewed behaves like Submit.
func (s *Service) Edit(ctx context.Context, sub Submission) error {
	if err := sub.validate(); err != nil {
		return err
	}

	if _, err := s.store.RemoveTitleEntry(ctx, sub.MediaID, sub.User); err != nil {
		return fmt.Errorf("remove title entry: %w", err)
	}
	if _, err := s.store.RemoveHistoryEntry(ctx, sub.User, sub.MediaID); err != nil {
		s.driftWarn(ctx, "edit: remove history entry", sub.MediaID, sub.User, err)
	}

	now := media.Timestamp(time.Now())
	meta := sub.meta()
	if _, err := s.store.AppendTitleEntry(ctx, meta, Entry{
		User:        sub.User,
		Rating:      sub.Rating,
		Review:      sub.Review,
		SubmittedAt: now,
	}); err != nil {
		return fmt.Errorf("append title entry: %w", err)
	}

	s.mirrorToHistory(ctx, sub, meta, now)
	s.recomputeAverage(ctx, sub.MediaID)
	s.pub.Publish(events.SubjectReviewEdited, "review_edited", sub.MediaID, sub.User, nil)
	return nil
}

// Delete removes the user's entry from both documents. Removing the last
// entry leaves the title with no average rather than an average of zero.
func (s *Service) Delete(ctx context.Context, user, mediaID string) error {
	removed, err := s.store.RemoveTitleEntry(ctx, mediaID, user)
	if err != nil {
		return fmt.Errorf("remove title entry: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	if _, err := s.store.RemoveHistoryEntry(ctx, user, mediaID); err != nil {
		s.driftWarn(ctx, "delete: remove history entry", mediaID, user, err)
	}
	s.recomputeAverage(ctx, mediaID)
	s.pub.Publish(events.SubjectReviewDeleted, "review_deleted", mediaID, user, nil)
	return nil
}

// ComputeAverage returns the mean of all ratings for a title, rounded to two
// decimal places half away from zero, or nil when the title has no entries.
// nil is distinct from a legitimate average of 0.
func (s *Service) ComputeAverage(ctx context.Context, mediaID string) (*float64, error) {
	t, err := s.store.GetTitle(ctx, mediaID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(t.Entries) == 0 {
		return nil, nil
	}
	sum := 0.0
	for _, e := range t.Entries {
		sum += e.Rating
	}
	avg := roundRating(sum / float64(len(t.Entries)))
	return &avg, nil
}

// Title returns the per-title document for the presentation layer.
func (s *Service) Title(ctx context.Context, mediaID string) (TitleReview, error) {
	return s.store.GetTitle(ctx, mediaID)
}

// History returns the per-user document for the profile page.
func (s *Service) History(ctx context.Context, user string) (UserHistory, error) {
	return s.store.GetHistory(ctx, user)
}

// TopRated returns the highest-rated titles for the home page.
func (s *Service) TopRated(ctx context.Context, limit int) ([]TitleReview, error) {
	return s.store.TopRated(ctx, limit)
}

// Reconcile repairs mirror drift and stale averages for one title. The title
// record is authoritative: user histories are rewritten to match it and the
// average is recomputed from its entries. Safe to replay any number of times.
func (s *Service) Reconcile(ctx context.Context, mediaID string) error {
	want := make(map[string]Entry)
	var (
		meta     TitleMeta
		hasTitle bool
	)
	t, err := s.store.GetTitle(ctx, mediaID)
	switch {
	case errors.Is(err, ErrNotFound):
		// No title record: any history entry for this media id is an orphan.
	case err != nil:
		return fmt.Errorf("reconcile %s: %w", mediaID, err)
	default:
		hasTitle = true
		meta = t.TitleMeta
		for _, e := range t.Entries {
			want[e.User] = e
		}
	}

	users, err := s.store.HistoryUsersFor(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("reconcile %s: list history users: %w", mediaID, err)
	}
	seen := make(map[string]bool, len(users))
	for _, u := range users {
		seen[u] = true
	}
	for u := range want {
		if !seen[u] {
			users = append(users, u)
		}
	}

	for _, user := range users {
		w, inTitle := want[user]
		have, inHistory, err := s.historyEntry(ctx, user, mediaID)
		if err != nil {
			return fmt.Errorf("reconcile %s: history %s: %w", mediaID, user, err)
		}

		switch {
		case inTitle && inHistory && sameEntry(w, have):
			// Mirror holds.
		case inTitle:
			if inHistory {
				if _, err := s.store.RemoveHistoryEntry(ctx, user, mediaID); err != nil {
					return err
				}
			}
			if _, err := s.store.AppendHistoryEntry(ctx, user, HistoryEntry{
				MediaID:     meta.MediaID,
				Title:       meta.Title,
				Image:       meta.Image,
				MediaType:   meta.MediaType,
				Rating:      w.Rating,
				Review:      w.Review,
				SubmittedAt: w.SubmittedAt,
			}); err != nil {
				return err
			}
		case inHistory:
			if _, err := s.store.RemoveHistoryEntry(ctx, user, mediaID); err != nil {
				return err
			}
		}
	}

	if hasTitle {
		avg, err := s.ComputeAverage(ctx, mediaID)
		if err != nil {
			return fmt.Errorf("reconcile %s: compute average: %w", mediaID, err)
		}
		if setErr := s.store.SetAverage(ctx, mediaID, avg); setErr != nil && !errors.Is(setErr, ErrNotFound) {
			return fmt.Errorf("reconcile %s: set average: %w", mediaID, setErr)
		}
	}
	return nil
}

func (s *Service) hasEntry(ctx context.Context, user, mediaID string) (bool, error) {
	t, err := s.store.GetTitle(ctx, mediaID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("get title: %w", err)
	}
	if err == nil {
		if _, ok := t.EntryFor(user); ok {
			return true, nil
		}
	}

	h, err := s.store.GetHistory(ctx, user)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("get history: %w", err)
	}
	if err == nil {
		if _, ok := h.EntryFor(mediaID); ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) historyEntry(ctx context.Context, user, mediaID string) (HistoryEntry, bool, error) {
	h, err := s.store.GetHistory(ctx, user)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return HistoryEntry{}, false, nil
		}
		return HistoryEntry{}, false, err
	}
	e, ok := h.EntryFor(mediaID)
	return e, ok, nil
}

// mirrorToHistory performs the second half of the paired write. A failure
// here leaves the mirror invariant violated; the title write already
// succeeded so the request is still reported as success and the reconciler
// repairs the drift from the published event.
func (s *Service) mirrorToHistory(ctx context.Context, sub Submission, meta TitleMeta, at time.Time) {
	if _, err := s.store.AppendHistoryEntry(ctx, sub.User, HistoryEntry{
		MediaID:     meta.MediaID,
		Title:       meta.Title,
		Image:       meta.Image,
		MediaType:   meta.MediaType,
		Rating:      sub.Rating,
		Review:      sub.Review,
		SubmittedAt: at,
	}); err != nil {
		s.driftWarn(ctx, "append history entry", sub.MediaID, sub.User, err)
	}
}

// recomputeAverage runs as a separate step after the writes. On failure the
// stored average goes stale rather than the mutation failing; the published
// event lets the reconciler retry.
func (s *Service) recomputeAverage(ctx context.Context, mediaID string) {
	avg, err := s.ComputeAverage(ctx, mediaID)
	if err != nil {
		s.log.Warn("average recompute failed, will reconcile",
			zap.String("media_id", mediaID), zap.Error(err))
		return
	}
	if err := s.store.SetAverage(ctx, mediaID, avg); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("average store failed, will reconcile",
			zap.String("media_id", mediaID), zap.Error(err))
	}
}

func (s *Service) driftWarn(_ context.Context, op, mediaID, user string, err error) {
	s.log.Warn("mirror drift: "+op,
		zap.String("media_id", mediaID), zap.String("user", user), zap.Error(err))
}

func sameEntry(w Entry, h HistoryEntry) bool {
	return w.Rating == h.Rating && w.Review == h.Review && w.SubmittedAt.Equal(h.SubmittedAt)
}

// roundRating rounds to two decimal places, halves away from zero.
func roundRating(x float64) float64 {
	return math.Round(x*100) / 100
}
