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
	"github.com/example/review-platform/internal/posts"
)

type postReq struct {
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body" validate:"required"`
	MediaID   string `json:"media_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	MediaType string `json:"media_type" validate:"required_with=MediaID"`
}

type replyReq struct {
	Text string `json:"text" validate:"required"`
}

type postsPageResp struct {
	Posts []posts.Post `json:"posts"`
	Page  int          `json:"page"`
}

// ListPosts returns one page of the discussion feed, newest first.
func ListPosts(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		page := queryPage(r)
		items, err := svc.Page(r.Context(), page)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, postsPageResp{Posts: items, Page: page})
	}
}

// CreatePost opens a discussion thread, optionally attached to a title.
func CreatePost(svc *posts.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		user, _ := auth.UsernameFromContext(r.Context())

		var req postReq
		if !decodeValid(w, r, rid, &req) {
			return
		}

		draft := posts.Draft{
			Author:  user,
			Subject: sanitize(req.Subject),
			Body:    sanitize(req.Body),
		}
		if req.MediaID != "" {
			mt, err := media.ParseType(req.MediaType)
			if err != nil {
				api.BadRequest(w, "INVALID_MEDIA_TYPE", err.Error(), rid, nil)
				return
			}
			draft.MediaID = req.MediaID
			draft.Title = sanitize(req.Title)
			draft.Image = req.Image
			draft.MediaType = mt
		}

		created, err := svc.Create(r.Context(), draft)
		if err != nil {
			if errors.Is(err, posts.ErrInvalidPost) {
				api.BadRequest(w, "INVALID_POST", err.Error(), rid, nil)
				return
			}
			log.Error("posts: create failed", zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// AddReply appends the caller's reply to an existing thread.
func AddReply(svc *posts.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		user, _ := auth.UsernameFromContext(r.Context())
		postID := chi.URLParam(r, "post_id")

		var req replyReq
		if !decodeValid(w, r, rid, &req) {
			return
		}

		updated, err := svc.Reply(r.Context(), postID, user, sanitize(req.Text))
		if err != nil {
			switch {
			case errors.Is(err, posts.ErrNotFound):
				api.NotFound(w, "POST_NOT_FOUND", "unknown post", rid)
			case errors.Is(err, posts.ErrInvalidPost):
				api.BadRequest(w, "INVALID_REPLY", "reply text is required", rid, nil)
			default:
				log.Error("posts: reply failed", zap.Error(err))
				api.Internal(w, rid)
			}
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}
