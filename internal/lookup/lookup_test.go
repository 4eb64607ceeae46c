package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/review-platform/internal/media"
)

func TestOMDBSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") != "blade runner" {
			t.Errorf("unexpected search term %q", r.URL.Query().Get("s"))
		}
		if r.URL.Query().Get("y") != "1982" {
			t.Errorf("expected year refinement, got %q", r.URL.Query().Get("y"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Search": [
				{"Title": "Blade Runner", "Year": "1982", "imdbID": "tt0083658", "Poster": "http://img.test/br.jpg"},
				{"Title": "Blade Runner 2049", "Year": "2017", "imdbID": "tt1856101", "Poster": "N/A"}
			],
			"totalResults": "2",
			"Response": "True"
		}`))
	}))
	defer srv.Close()

	c := newOMDBCatalog("k", srv.URL, time.Second)
	got, err := c.Search(context.Background(), "blade runner", "1982")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].MediaID != "tt0083658" || got[0].Type != media.Movie || got[0].Year != "1982" {
		t.Fatalf("unexpected first result: %+v", got[0])
	}
	if got[0].Image != "https://img.test/br.jpg" {
		t.Fatalf("expected https poster, got %q", got[0].Image)
	}
	if got[1].Image != "" {
		t.Fatalf("expected N/A poster to be dropped, got %q", got[1].Image)
	}
}

func TestOMDBSearch_NoMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	}))
	defer srv.Close()

	c := newOMDBCatalog("k", srv.URL, time.Second)
	got, err := c.Search(context.Background(), "zzzz", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty results, got %d", len(got))
	}
}

func TestOMDBByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Response": "False", "Error": "Incorrect IMDb ID."}`))
	}))
	defer srv.Close()

	c := newOMDBCatalog("k", srv.URL, time.Second)
	if _, err := c.ByID(context.Background(), "tt0000000", ""); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOMDB_UpstreamErrors(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"status 500": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Search": [`))
		},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			c := newOMDBCatalog("k", srv.URL, time.Second)
			if _, err := c.Search(context.Background(), "x", ""); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestBooksSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "intitle:dune") || !strings.Contains(q, "inauthor:herbert") {
			t.Errorf("unexpected query %q", q)
		}
		_, _ = w.Write([]byte(`{
			"items": [{
				"id": "B1",
				"volumeInfo": {
					"title": "Dune",
					"authors": ["Frank Herbert"],
					"publishedDate": "1965-08-01",
					"description": "Desert planet.",
					"imageLinks": {"thumbnail": "http://books.test/dune.jpg"}
				}
			}]
		}`))
	}))
	defer srv.Close()

	c := newBooksCatalog("k", srv.URL, time.Second)
	got, err := c.Search(context.Background(), "dune", "herbert")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	want := media.Summary{
		MediaID: "B1", Title: "Dune", Image: "https://books.test/dune.jpg",
		Type: media.Book, Year: "1965", Synopsis: "Desert planet.",
	}
	if got[0] != want {
		t.Fatalf("unexpected result:\n got %+v\nwant %+v", got[0], want)
	}
}

func TestBooksByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newBooksCatalog("k", srv.URL, time.Second)
	if _, err := c.ByID(context.Background(), "missing", ""); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func jikanFixture() string {
	return `{
		"data": [
			{"mal_id": 1, "title": "Cowboy Bebop", "synopsis": "Bounty hunters.", "year": 1998,
			 "images": {"jpg": {"large_image_url": "http://cdn.test/1.jpg"}}},
			{"mal_id": 5, "title": "Cowboy Bebop: The Movie", "year": 2001,
			 "images": {"jpg": {"large_image_url": "https://cdn.test/5.jpg"}}}
		],
		"pagination": {"has_next_page": false}
	}`
}

func TestJikanSearch(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(jikanFixture()))
	}))
	defer srv.Close()

	c := newJikanCatalog(media.Anime, srv.URL, time.Second)
	got, err := c.Search(context.Background(), "cowboy bebop", "ignored")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if path != "/anime" {
		t.Fatalf("expected /anime path, got %q", path)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].MediaID != "1" || got[0].Type != media.Anime || got[0].Year != "1998" {
		t.Fatalf("unexpected first result: %+v", got[0])
	}
	if got[0].Image != "https://cdn.test/1.jpg" {
		t.Fatalf("expected https image, got %q", got[0].Image)
	}
}

func TestJikanSearch_MangaPath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := newJikanCatalog(media.Manga, srv.URL, time.Second)
	if _, err := c.Search(context.Background(), "berserk", ""); err != nil {
		t.Fatalf("search: %v", err)
	}
	if path != "/manga" {
		t.Fatalf("expected /manga path, got %q", path)
	}
}

func TestJikanByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(jikanFixture()))
	}))
	defer srv.Close()

	c := newJikanCatalog(media.Anime, srv.URL, time.Second)
	got, err := c.ByID(context.Background(), "5", "Cowboy Bebop")
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got.MediaID != "5" || got.Title != "Cowboy Bebop: The Movie" {
		t.Fatalf("expected the mal_id match, got %+v", got)
	}

	// Unknown id falls back to the best title match.
	got, err = c.ByID(context.Background(), "999", "Cowboy Bebop")
	if err != nil {
		t.Fatalf("by id fallback: %v", err)
	}
	if got.MediaID != "1" {
		t.Fatalf("expected title-match fallback, got %+v", got)
	}

	if _, err := c.ByID(context.Background(), "1", ""); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound without a title hint, got %v", err)
	}
}

func TestSearchCache(t *testing.T) {
	c := NewSearchCache(50*time.Millisecond, nil)
	key := Key(media.Movie, "  Blade Runner ", "1982")

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := []media.Summary{{MediaID: "tt1", Type: media.Movie}}
	c.Set(key, want)

	got, ok := c.Get(key)
	if !ok || len(got) != 1 || got[0].MediaID != "tt1" {
		t.Fatalf("expected hit, got ok=%v %+v", ok, got)
	}
	// Key normalizes case and whitespace.
	if _, ok := c.Get(Key(media.Movie, "blade runner", "1982")); !ok {
		t.Fatal("expected normalized key to hit")
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Fatal("expected expiry after ttl")
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := Registry{
		media.Movie: newOMDBCatalog("k", "http://unused.test", time.Second),
	}
	if _, ok := r.For(media.Movie); !ok {
		t.Fatal("expected movie catalog")
	}
	if _, ok := r.For(media.Manga); ok {
		t.Fatal("expected no manga catalog in partial registry")
	}
}
