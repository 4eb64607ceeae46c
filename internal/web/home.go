package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/example/review-platform/internal/platform/api"
	"github.com/example/review-platform/internal/platform/httpserver"
	"github.com/example/review-platform/internal/posts"
	"github.com/example/review-platform/internal/reviews"
)

const topRatedLimit = 10

type homeResp struct {
	Posts         []posts.Post          `json:"posts"`
	PopularTitles []reviews.TitleReview `json:"popular_titles"`
	Page          int                   `json:"page"`
}

// Home assembles the landing page: a page of the discussion feed and the ten
// highest-rated titles.
func Home(postSvc *posts.Service, reviewSvc *reviews.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		page := queryPage(r)

		feed, err := postSvc.Page(r.Context(), page)
		if err != nil {
			log.Error("home: posts page failed", zap.Error(err))
			api.Internal(w, rid)
			return
		}
		top, err := reviewSvc.TopRated(r.Context(), topRatedLimit)
		if err != nil {
			log.Error("home: top rated failed", zap.Error(err))
			api.Internal(w, rid)
			return
		}

		api.WriteJSON(w, http.StatusOK, homeResp{
			Posts:         feed,
			PopularTitles: top,
			Page:          page,
		})
	}
}
