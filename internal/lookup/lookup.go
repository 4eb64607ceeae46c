// Package lookup queries the external media catalogs (OMDb, Google Books,
// Jikan) and maps their payloads to the platform's Summary shape.
package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/example/review-platform/internal/media"
	"github.com/example/review-platform/internal/platform/config"
)

// ErrNotFound is returned by ByID when the upstream has no such title.
var ErrNotFound = errors.New("title not found upstream")

// Catalog is one external media source. Refinement narrows a search and is
// source-specific: release year for movies, author for books, ignored by the
// anime and manga catalogs. ByID takes a title hint for sources that cannot
// resolve an id directly.
type Catalog interface {
	Search(ctx context.Context, term, refinement string) ([]media.Summary, error)
	ByID(ctx context.Context, id, titleHint string) (media.Summary, error)
}

// Registry dispatches lookups by media type.
type Registry map[media.Type]Catalog

// NewRegistry builds the production registry from config. Every media type
// gets a catalog; keys may be empty, in which case the upstream rejects the
// call and the caller degrades to empty results.
func NewRegistry(cfg config.LookupConfig) Registry {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return Registry{
		media.Movie: newOMDBCatalog(cfg.OMDBKey, "", timeout),
		media.Book:  newBooksCatalog(cfg.GoogleBooksKey, "", timeout),
		media.Anime: newJikanCatalog(media.Anime, "", timeout),
		media.Manga: newJikanCatalog(media.Manga, "", timeout),
	}
}

// For returns the catalog for a media type.
func (r Registry) For(t media.Type) (Catalog, bool) {
	c, ok := r[t]
	return c, ok
}
