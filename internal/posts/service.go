package posts

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/review-platform/internal/media"
	"github.com/example/review-platform/internal/platform/events"
)

var ErrInvalidPost = errors.New("post subject and body are required")

// Service applies discussion rules on top of a Store and announces new
// threads on the event bus.
type Service struct {
	store Store
	pub   *events.Publisher
	log   *zap.Logger
}

func NewService(store Store, pub *events.Publisher, log *zap.Logger) *Service {
	return &Service{store: store, pub: pub, log: log}
}

// Draft is a new post as accepted from the web layer. Media fields are
// optional; when MediaID is set the post renders with its title context.
type Draft struct {
	Author    string
	Subject   string
	Body      string
	MediaID   string
	Title     string
	Image     string
	MediaType media.Type
}

func (s *Service) Create(ctx context.Context, d Draft) (Post, error) {
	if strings.TrimSpace(d.Subject) == "" || strings.TrimSpace(d.Body) == "" {
		return Post{}, ErrInvalidPost
	}

	p := Post{
		MediaID:   strings.TrimSpace(d.MediaID),
		Title:     d.Title,
		Image:     media.NormalizeImageURL(d.Image),
		MediaType: d.MediaType,
		Author:    d.Author,
		Subject:   strings.TrimSpace(d.Subject),
		Body:      d.Body,
		CreatedAt: media.Timestamp(time.Now()),
	}
	created, err := s.store.Create(ctx, p)
	if err != nil {
		return Post{}, err
	}

	s.pub.Publish(events.SubjectPostCreated, "post_created", created.MediaID, created.Author, map[string]any{
		"post_id": created.ID,
	})
	return created, nil
}

func (s *Service) Reply(ctx context.Context, postID, user, text string) (Post, error) {
	if strings.TrimSpace(text) == "" {
		return Post{}, ErrInvalidPost
	}
	r := Reply{
		User:      user,
		Text:      text,
		RepliedAt: media.Timestamp(time.Now()),
	}
	if err := s.store.AddReply(ctx, postID, r); err != nil {
		return Post{}, err
	}
	return s.store.Get(ctx, postID)
}

func (s *Service) Get(ctx context.Context, postID string) (Post, error) {
	return s.store.Get(ctx, postID)
}

// Page returns the page-th window of DefaultPageSize posts, newest first.
func (s *Service) Page(ctx context.Context, page int) ([]Post, error) {
	return s.store.List(ctx, page, DefaultPageSize)
}
