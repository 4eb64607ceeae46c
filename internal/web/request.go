// Package web exposes the platform over HTTP: JSON in, JSON out, chi routes.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/example/review-platform/internal/platform/api"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

var validate = validator.New()

// User-authored text is stripped of all markup before it reaches a store.
var sanitizer = bluemonday.StrictPolicy()

func sanitize(s string) string {
	return strings.TrimSpace(sanitizer.Sanitize(s))
}

// decodeValid reads up to maxRequestBodyBytes of JSON into dst and runs the
// struct's validate tags. On failure it writes a 400 response and returns false.
func decodeValid[T any](w http.ResponseWriter, r *http.Request, rid string, dst *T) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		details := map[string]any{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		api.BadRequest(w, "VALIDATION", "Invalid request body", rid, details)
		return false
	}
	return true
}

// queryPage parses ?page= with a floor of 1.
func queryPage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
