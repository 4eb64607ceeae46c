package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/example/review-platform/internal/lookup"
	"github.com/example/review-platform/internal/media"
	"github.com/example/review-platform/internal/platform/api"
	"github.com/example/review-platform/internal/platform/httpserver"
)

type searchReq struct {
	Term       string `json:"term" validate:"required,min=1"`
	MediaType  string `json:"media_type" validate:"required"`
	Refinement string `json:"refinement"`
}

type searchResp struct {
	Results []media.Summary `json:"results"`
	Total   int             `json:"total"`
}

// Search queries the catalog for the requested media type. Upstream failure
// is not an error from the caller's point of view: the response degrades to
// empty results and the failure is logged.
func Search(registry lookup.Registry, cache *lookup.SearchCache, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req searchReq
		if !decodeValid(w, r, rid, &req) {
			return
		}
		mt, err := media.ParseType(req.MediaType)
		if err != nil {
			api.BadRequest(w, "INVALID_MEDIA_TYPE", err.Error(), rid, nil)
			return
		}
		catalog, ok := registry.For(mt)
		if !ok {
			api.BadRequest(w, "INVALID_MEDIA_TYPE", "no catalog for media type", rid, nil)
			return
		}

		key := lookup.Key(mt, req.Term, req.Refinement)
		if cache != nil {
			if results, ok := cache.Get(key); ok {
				api.WriteJSON(w, http.StatusOK, searchResp{Results: results, Total: len(results)})
				return
			}
		}

		results, err := catalog.Search(r.Context(), req.Term, req.Refinement)
		if err != nil {
			log.Warn("search: upstream failed",
				zap.String("media_type", mt.String()),
				zap.String("term", req.Term),
				zap.Error(err))
			api.WriteJSON(w, http.StatusOK, searchResp{Results: []media.Summary{}, Total: 0})
			return
		}
		if cache != nil {
			cache.Set(key, results)
		}
		api.WriteJSON(w, http.StatusOK, searchResp{Results: results, Total: len(results)})
	}
}
