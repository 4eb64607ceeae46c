package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/review-platform/internal/lookup"
	"github.com/example/review-platform/internal/media"
	"github.com/example/review-platform/internal/platform/api"
	"github.com/example/review-platform/internal/platform/httpserver"
	"github.com/example/review-platform/internal/reviews"
)

type mediaDetailResp struct {
	Summary *media.Summary       `json:"summary,omitempty"`
	Review  *reviews.TitleReview `json:"review,omitempty"`
}

// MediaDetail assembles the title page: the catalog summary plus the review
// record. Either half may be missing; only both missing is a 404. A lookup
// failure degrades to the review-only payload.
func MediaDetail(registry lookup.Registry, svc *reviews.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		mt, err := media.ParseType(chi.URLParam(r, "media_type"))
		if err != nil {
			api.BadRequest(w, "INVALID_MEDIA_TYPE", err.Error(), rid, nil)
			return
		}
		mediaID := chi.URLParam(r, "media_id")
		titleHint := r.URL.Query().Get("title")

		var resp mediaDetailResp

		if catalog, ok := registry.For(mt); ok {
			summary, err := catalog.ByID(r.Context(), mediaID, titleHint)
			switch {
			case err == nil:
				resp.Summary = &summary
			case errors.Is(err, lookup.ErrNotFound):
				// fall through to the review record
			default:
				log.Warn("media detail: lookup failed",
					zap.String("media_type", mt.String()),
					zap.String("media_id", mediaID),
					zap.Error(err))
			}
		}

		title, err := svc.Title(r.Context(), mediaID)
		switch {
		case err == nil:
			resp.Review = &title
		case errors.Is(err, reviews.ErrNotFound):
			// unreviewed title
		default:
			api.Internal(w, rid)
			return
		}

		if resp.Summary == nil && resp.Review == nil {
			api.NotFound(w, "MEDIA_NOT_FOUND", "unknown title", rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, resp)
	}
}
