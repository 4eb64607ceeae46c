package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/review-platform/internal/media"
	"github.com/example/review-platform/internal/platform/api"
	"github.com/example/review-platform/internal/platform/auth"
	"github.com/example/review-platform/internal/platform/httpserver"
	"github.com/example/review-platform/internal/reviews"
)

type reviewReq struct {
	Title     string  `json:"title" validate:"required"`
	Image     string  `json:"image"`
	MediaType string  `json:"media_type" validate:"required"`
	Rating    float64 `json:"rating" validate:"min=0,max=10"`
	Review    string  `json:"review"`
}

func (req reviewReq) submission(user, mediaID string, mt media.Type) reviews.Submission {
	return reviews.Submission{
		User:      user,
		MediaID:   mediaID,
		Title:     sanitize(req.Title),
		Image:     req.Image,
		MediaType: mt,
		Rating:    req.Rating,
		Review:    sanitize(req.Review),
	}
}

// GetTitleReview returns the aggregate record for a title: entries plus the
// current average, null when nobody has rated it.
func GetTitleReview(svc *reviews.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		mediaID := chi.URLParam(r, "media_id")
		title, err := svc.Title(r.Context(), mediaID)
		if err != nil {
			if errors.Is(err, reviews.ErrNotFound) {
				api.NotFound(w, "TITLE_NOT_FOUND", "no reviews for this title", rid)
				return
			}
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, title)
	}
}

// SubmitReview records the caller's review of a title. A second submission
// for the same title is a no-op and reported as 200 instead of 201.
func SubmitReview(svc *reviews.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		user, _ := auth.UsernameFromContext(r.Context())
		mediaID := chi.URLParam(r, "media_id")

		var req reviewReq
		if !decodeValid(w, r, rid, &req) {
			return
		}
		mt, err := media.ParseType(req.MediaType)
		if err != nil {
			api.BadRequest(w, "INVALID_MEDIA_TYPE", err.Error(), rid, nil)
			return
		}

		created, err := svc.Submit(r.Context(), req.submission(user, mediaID, mt))
		if err != nil {
			writeReviewError(w, rid, log, err)
			return
		}

		title, err := svc.Title(r.Context(), mediaID)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		api.WriteJSON(w, status, title)
	}
}

// EditReview replaces the caller's review of a title.
func EditReview(svc *reviews.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		user, _ := auth.UsernameFromContext(r.Context())
		mediaID := chi.URLParam(r, "media_id")

		var req reviewReq
		if !decodeValid(w, r, rid, &req) {
			return
		}
		mt, err := media.ParseType(req.MediaType)
		if err != nil {
			api.BadRequest(w, "INVALID_MEDIA_TYPE", err.Error(), rid, nil)
			return
		}

		if err := svc.Edit(r.Context(), req.submission(user, mediaID, mt)); err != nil {
			writeReviewError(w, rid, log, err)
			return
		}

		title, err := svc.Title(r.Context(), mediaID)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, title)
	}
}

// DeleteReview removes the caller's review of a title.
func DeleteReview(svc *reviews.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		user, _ := auth.UsernameFromContext(r.Context())
		mediaID := chi.URLParam(r, "media_id")

		if err := svc.Delete(r.Context(), user, mediaID); err != nil {
			writeReviewError(w, rid, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// UserReviews returns a user's review history, the profile page payload.
func UserReviews(svc *reviews.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		username := chi.URLParam(r, "username")
		history, err := svc.History(r.Context(), username)
		if err != nil {
			if errors.Is(err, reviews.ErrNotFound) {
				// A user with no reviews still has a profile page.
				api.WriteJSON(w, http.StatusOK, reviews.UserHistory{
					User:    username,
					Entries: []reviews.HistoryEntry{},
				})
				return
			}
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, history)
	}
}

func writeReviewError(w http.ResponseWriter, rid string, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, reviews.ErrInvalidRating):
		api.BadRequest(w, "INVALID_RATING", "rating must be between 0 and 10", rid, nil)
	case errors.Is(err, reviews.ErrNotFound):
		api.NotFound(w, "REVIEW_NOT_FOUND", "no review to modify", rid)
	default:
		log.Error("reviews: store failure", zap.Error(err))
		api.Internal(w, rid)
	}
}
