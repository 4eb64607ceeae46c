package web

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/review-platform/internal/identity"
	"github.com/example/review-platform/internal/lookup"
	"github.com/example/review-platform/internal/platform/auth"
	"github.com/example/review-platform/internal/platform/httpserver"
	"github.com/example/review-platform/internal/posts"
	"github.com/example/review-platform/internal/reviews"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Identity *identity.Service
	Reviews  *reviews.Service
	Posts    *posts.Service
	Registry lookup.Registry
	Cache    *lookup.SearchCache
	Verifier auth.JWTVerifier
	Log      *zap.Logger
}

// NewRouter wires all routes under /v1.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	httpserver.SetupRouter(r)

	requireUser := auth.RequireUser(d.Verifier)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", Register(d.Identity))
			r.Post("/login", Login(d.Identity))
			r.Post("/refresh", Refresh(d.Identity))
			r.Post("/logout", Logout(d.Identity))
		})

		r.Get("/home", Home(d.Posts, d.Reviews, d.Log))
		r.Post("/search", Search(d.Registry, d.Cache, d.Log))
		r.Get("/media/{media_type}/{media_id}", MediaDetail(d.Registry, d.Reviews, d.Log))

		r.Route("/reviews/{media_id}", func(r chi.Router) {
			r.Get("/", GetTitleReview(d.Reviews))
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", SubmitReview(d.Reviews, d.Log))
				r.Put("/", EditReview(d.Reviews, d.Log))
				r.Delete("/", DeleteReview(d.Reviews, d.Log))
			})
		})
		r.Get("/users/{username}/reviews", UserReviews(d.Reviews))

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", ListPosts(d.Posts))
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", CreatePost(d.Posts, d.Log))
				r.Post("/{post_id}/replies", AddReply(d.Posts, d.Log))
			})
		})
	})

	return r
}
