package reviews

import (
	"context"
	"testing"

	"github.com/example/review-platform/internal/media"
)

func TestInMemoryStore_AppendGuard(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	meta := TitleMeta{MediaID: "tt1", Title: "X", MediaType: media.Movie}

	created, err := s.AppendTitleEntry(ctx, meta, Entry{User: "alice", Rating: 8})
	if err != nil || !created {
		t.Fatalf("first append: created=%v err=%v", created, err)
	}
	created, err = s.AppendTitleEntry(ctx, meta, Entry{User: "alice", Rating: 2})
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if created {
		t.Fatal("expected per-user guard to reject the second append")
	}

	title, err := s.GetTitle(ctx, "tt1")
	if err != nil {
		t.Fatalf("get title: %v", err)
	}
	if len(title.Entries) != 1 || title.Entries[0].Rating != 8 {
		t.Fatalf("unexpected entries: %+v", title.Entries)
	}
}

func TestInMemoryStore_RemoveMissing(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	removed, err := s.RemoveTitleEntry(ctx, "tt1", "alice")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed {
		t.Fatal("expected removal from unknown title to report false")
	}

	removed, err = s.RemoveHistoryEntry(ctx, "alice", "tt1")
	if err != nil || removed {
		t.Fatalf("expected no-op history removal, removed=%v err=%v", removed, err)
	}
}

func TestInMemoryStore_TopRated(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	for i, tc := range []struct {
		id  string
		avg float64
	}{{"tt1", 6.5}, {"tt2", 9.2}, {"tt3", 8.0}} {
		meta := TitleMeta{MediaID: tc.id, Title: "T", MediaType: media.Anime}
		if _, err := s.AppendTitleEntry(ctx, meta, Entry{User: "u", Rating: tc.avg}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		avg := tc.avg
		if err := s.SetAverage(ctx, tc.id, &avg); err != nil {
			t.Fatalf("set average %d: %v", i, err)
		}
	}
	// A title with no ratings must not appear.
	if _, err := s.AppendTitleEntry(ctx, TitleMeta{MediaID: "tt4", MediaType: media.Anime}, Entry{User: "u", Rating: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RemoveTitleEntry(ctx, "tt4", "u"); err != nil {
		t.Fatal(err)
	}

	top, err := s.TopRated(ctx, 2)
	if err != nil {
		t.Fatalf("top rated: %v", err)
	}
	if len(top) != 2 || top[0].MediaID != "tt2" || top[1].MediaID != "tt3" {
		t.Fatalf("unexpected top order: %+v", top)
	}
}

func TestInMemoryStore_HistoryUsersFor(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	for _, user := range []string{"bob", "alice"} {
		if _, err := s.AppendHistoryEntry(ctx, user, HistoryEntry{MediaID: "tt1", Rating: 5}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.AppendHistoryEntry(ctx, "carol", HistoryEntry{MediaID: "tt2", Rating: 5}); err != nil {
		t.Fatal(err)
	}

	users, err := s.HistoryUsersFor(ctx, "tt1")
	if err != nil {
		t.Fatalf("history users: %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Fatalf("unexpected users: %v", users)
	}
}

// TestStoreInterface ensures both implementations satisfy the interface.
func TestStoreInterface(t *testing.T) {
	var _ Store = (*InMemoryStore)(nil)
	var _ Store = (*PostgresStore)(nil)
}
