// Package posts implements the discussion service: free-form or
// title-attached posts with append-only replies.
package posts

import (
	"context"
	"errors"
	"time"

	"github.com/example/review-platform/internal/media"
)

// DefaultPageSize is the home-page post window.
const DefaultPageSize = 10

// ErrNotFound is returned for replies to unknown posts.
var ErrNotFound = errors.New("post not found")

// Reply is one entry in a post's append-only reply sequence.
type Reply struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	RepliedAt time.Time `json:"replied_at"`
}

// Post is a discussion thread. The media fields are empty on general posts
// and carry the catalog context on title-attached ones. Posts are never
// deleted; the only mutation after creation is a reply append.
type Post struct {
	ID        string     `json:"id"`
	MediaID   string     `json:"media_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Image     string     `json:"image,omitempty"`
	MediaType media.Type `json:"media_type,omitempty"`
	Author    string     `json:"author"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	Replies   []Reply    `json:"replies"`
}

// Store persists posts. List is offset-paginated, newest first.
type Store interface {
	Create(ctx context.Context, p Post) (Post, error)
	Get(ctx context.Context, postID string) (Post, error)
	// AddReply appends atomically; ErrNotFound when the post does not exist.
	AddReply(ctx context.Context, postID string, r Reply) error
	// List returns the page-th window (1-based) of pageSize posts ordered by
	// creation time descending. An empty store yields an empty slice.
	List(ctx context.Context, page, pageSize int) ([]Post, error)
}

// NormalizePage clamps user-supplied page numbers: anything below 1 becomes 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return size
}
