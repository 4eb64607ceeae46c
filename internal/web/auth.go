package web

import (
	"errors"
	"net/http"

	"github.com/example/review-platform/internal/identity"
	"github.com/example/review-platform/internal/platform/api"
	"github.com/example/review-platform/internal/platform/httpserver"
)

type registerReq struct {
	Email    string `json:"email" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginReq struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Register creates an account and opens a session.
func Register(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req registerReq
		if !decodeValid(w, r, rid, &req) {
			return
		}

		sess, err := svc.Register(r.Context(), req.Email, req.Username, req.Password)
		if err != nil {
			writeIdentityError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, sess)
	}
}

func Login(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req loginReq
		if !decodeValid(w, r, rid, &req) {
			return
		}

		sess, err := svc.Login(r.Context(), req.Login, req.Password)
		if err != nil {
			writeIdentityError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, sess)
	}
}

func Refresh(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req refreshReq
		if !decodeValid(w, r, rid, &req) {
			return
		}

		sess, err := svc.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			writeIdentityError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, sess)
	}
}

func Logout(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req refreshReq
		if !decodeValid(w, r, rid, &req) {
			return
		}

		if err := svc.Logout(r.Context(), req.RefreshToken); err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func writeIdentityError(w http.ResponseWriter, rid string, err error) {
	var ve *identity.ValidationError
	switch {
	case errors.As(err, &ve):
		api.BadRequest(w, "VALIDATION", ve.Error(), rid, map[string]any{ve.Field: ve.Reason})
	case errors.Is(err, identity.ErrConflict):
		api.Conflict(w, "USER_ALREADY_EXISTS", "User already exists", rid, nil)
	case errors.Is(err, identity.ErrInvalidCredentials):
		api.Unauthorized(w, "AUTH_INVALID_CREDENTIALS", "Invalid credentials", rid)
	default:
		api.Internal(w, rid)
	}
}
