package posts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/review-platform/internal/media"
)

func newTestService() (*Service, *InMemoryStore) {
	store := NewInMemoryStore()
	return NewService(store, nil, zap.NewNop()), store
}

func TestCreate_GeneralAndAttached(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	general, err := svc.Create(ctx, Draft{Author: "alice", Subject: "hi", Body: "first"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if general.ID == "" || general.MediaID != "" || len(general.Replies) != 0 {
		t.Fatalf("unexpected general post: %+v", general)
	}

	attached, err := svc.Create(ctx, Draft{
		Author: "bob", Subject: "ep 3", Body: "thoughts?",
		MediaID: "mal-1", Title: "Cowboy Bebop", Image: "http://img.test/1.jpg",
		MediaType: media.Anime,
	})
	if err != nil {
		t.Fatalf("create attached: %v", err)
	}
	if attached.MediaID != "mal-1" || attached.MediaType != media.Anime {
		t.Fatalf("media context lost: %+v", attached)
	}
	if attached.Image != "https://img.test/1.jpg" {
		t.Fatalf("expected https image url, got %q", attached.Image)
	}
}

func TestCreate_RejectsEmpty(t *testing.T) {
	svc, _ := newTestService()
	for _, d := range []Draft{
		{Author: "a", Subject: "", Body: "b"},
		{Author: "a", Subject: "s", Body: "   "},
	} {
		if _, err := svc.Create(context.Background(), d); err != ErrInvalidPost {
			t.Fatalf("draft %+v: expected ErrInvalidPost, got %v", d, err)
		}
	}
}

func TestReply_AppendsInOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, Draft{Author: "alice", Subject: "s", Body: "b"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Reply(ctx, p.ID, "bob", fmt.Sprintf("reply %d", i)); err != nil {
			t.Fatalf("reply %d: %v", i, err)
		}
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Replies) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(got.Replies))
	}
	for i, r := range got.Replies {
		if r.Text != fmt.Sprintf("reply %d", i) {
			t.Fatalf("reply order broken at %d: %q", i, r.Text)
		}
	}
}

func TestReply_MissingPost(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Reply(context.Background(), "nope", "bob", "hi"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPage_Pagination(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	// 25 posts with strictly increasing timestamps so the order is fixed.
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 25; i++ {
		p, err := svc.Create(ctx, Draft{Author: "a", Subject: fmt.Sprintf("post %d", i), Body: "b"})
		if err != nil {
			t.Fatal(err)
		}
		store.mu.Lock()
		store.posts[p.ID].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		store.mu.Unlock()
	}

	page2, err := svc.Page(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 10 {
		t.Fatalf("expected 10 posts on page 2, got %d", len(page2))
	}
	// Newest first: page 2 holds posts 15 down to 6.
	if page2[0].Subject != "post 15" || page2[9].Subject != "post 6" {
		t.Fatalf("unexpected page 2 bounds: %q .. %q", page2[0].Subject, page2[9].Subject)
	}

	page3, err := svc.Page(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(page3) != 5 {
		t.Fatalf("expected 5 posts on page 3, got %d", len(page3))
	}

	beyond, err := svc.Page(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(beyond) != 0 {
		t.Fatalf("expected empty page beyond the data, got %d", len(beyond))
	}
}

func TestPage_EmptyStore(t *testing.T) {
	svc, _ := newTestService()
	page, err := svc.Page(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if page == nil || len(page) != 0 {
		t.Fatalf("expected empty slice, got %v", page)
	}
}

func TestPage_ClampsPageNumber(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, Draft{Author: "a", Subject: "s", Body: "b"}); err != nil {
		t.Fatal(err)
	}
	page, err := svc.Page(ctx, -3)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 {
		t.Fatalf("expected page below 1 to clamp to the first page, got %d posts", len(page))
	}
}
