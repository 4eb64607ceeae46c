package posts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/review-platform/internal/media"
)

// InMemoryStore is a development and test implementation of Store.
type InMemoryStore struct {
	mu    sync.RWMutex
	posts map[string]*Post
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{posts: make(map[string]*Post)}
}

func (s *InMemoryStore) Create(_ context.Context, p Post) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = media.Timestamp(time.Now())
	}
	p.Replies = []Reply{}
	stored := p
	s.posts[p.ID] = &stored
	return p, nil
}

func (s *InMemoryStore) Get(_ context.Context, postID string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	if !ok {
		return Post{}, ErrNotFound
	}
	return copyPost(p), nil
}

func (s *InMemoryStore) AddReply(_ context.Context, postID string, r Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.Replies = append(p.Replies, r)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, page, pageSize int) ([]Post, error) {
	page = NormalizePage(page)
	pageSize = normalizePageSize(pageSize)

	s.mu.RLock()
	all := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		all = append(all, copyPost(p))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := (page - 1) * pageSize
	if start >= len(all) {
		return []Post{}, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func copyPost(p *Post) Post {
	out := *p
	out.Replies = append([]Reply(nil), p.Replies...)
	return out
}
