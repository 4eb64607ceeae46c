package reviews

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is a development and test implementation of Store.
type InMemoryStore struct {
	mu        sync.RWMutex
	titles    map[string]*TitleReview
	histories map[string]*UserHistory
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		titles:    make(map[string]*TitleReview),
		histories: make(map[string]*UserHistory),
	}
}

func (s *InMemoryStore) GetTitle(_ context.Context, mediaID string) (TitleReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.titles[mediaID]
	if !ok {
		return TitleReview{}, ErrNotFound
	}
	return copyTitle(t), nil
}

func (s *InMemoryStore) AppendTitleEntry(_ context.Context, meta TitleMeta, e Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.titles[meta.MediaID]
	if !ok {
		t = &TitleReview{TitleMeta: meta}
		s.titles[meta.MediaID] = t
	}
	for _, existing := range t.Entries {
		if existing.User == e.User {
			return false, nil
		}
	}
	t.Entries = append(t.Entries, e)
	return true, nil
}

func (s *InMemoryStore) RemoveTitleEntry(_ context.Context, mediaID, user string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.titles[mediaID]
	if !ok {
		return false, nil
	}
	for i, e := range t.Entries {
		if e.User == user {
			t.Entries = append(t.Entries[:i], t.Entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) SetAverage(_ context.Context, mediaID string, avg *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.titles[mediaID]
	if !ok {
		return ErrNotFound
	}
	if avg == nil {
		t.AverageRating = nil
		return nil
	}
	v := *avg
	t.AverageRating = &v
	return nil
}

func (s *InMemoryStore) GetHistory(_ context.Context, user string) (UserHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.histories[user]
	if !ok {
		return UserHistory{}, ErrNotFound
	}
	return copyHistory(h), nil
}

func (s *InMemoryStore) AppendHistoryEntry(_ context.Context, user string, e HistoryEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[user]
	if !ok {
		h = &UserHistory{User: user}
		s.histories[user] = h
	}
	for _, existing := range h.Entries {
		if existing.MediaID == e.MediaID {
			return false, nil
		}
	}
	h.Entries = append(h.Entries, e)
	return true, nil
}

func (s *InMemoryStore) RemoveHistoryEntry(_ context.Context, user, mediaID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[user]
	if !ok {
		return false, nil
	}
	for i, e := range h.Entries {
		if e.MediaID == mediaID {
			h.Entries = append(h.Entries[:i], h.Entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) HistoryUsersFor(_ context.Context, mediaID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var users []string
	for user, h := range s.histories {
		for _, e := range h.Entries {
			if e.MediaID == mediaID {
				users = append(users, user)
				break
			}
		}
	}
	sort.Strings(users)
	return users, nil
}

func (s *InMemoryStore) TopRated(_ context.Context, limit int) ([]TitleReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rated []TitleReview
	for _, t := range s.titles {
		if t.AverageRating != nil {
			rated = append(rated, copyTitle(t))
		}
	}
	sort.Slice(rated, func(i, j int) bool {
		if *rated[i].AverageRating != *rated[j].AverageRating {
			return *rated[i].AverageRating > *rated[j].AverageRating
		}
		return rated[i].MediaID < rated[j].MediaID
	})
	if limit > 0 && len(rated) > limit {
		rated = rated[:limit]
	}
	return rated, nil
}

func copyTitle(t *TitleReview) TitleReview {
	out := TitleReview{TitleMeta: t.TitleMeta}
	if t.AverageRating != nil {
		v := *t.AverageRating
		out.AverageRating = &v
	}
	out.Entries = append([]Entry(nil), t.Entries...)
	return out
}

func copyHistory(h *UserHistory) UserHistory {
	return UserHistory{
		User:    h.User,
		Entries: append([]HistoryEntry(nil), h.Entries...),
	}
}
