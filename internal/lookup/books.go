package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/review-platform/internal/media"
)

const defaultBooksBaseURL = "https://www.googleapis.com/books/v1"

// booksCatalog resolves books through the Google Books volumes API.
// Refinement is the author name.
type booksCatalog struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newBooksCatalog(apiKey, baseURL string, timeout time.Duration) *booksCatalog {
	if baseURL == "" {
		baseURL = defaultBooksBaseURL
	}
	return &booksCatalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type booksVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		PublishedDate string   `json:"publishedDate"`
		Description   string   `json:"description"`
		ImageLinks    struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

type booksListResponse struct {
	Items []booksVolume `json:"items"`
}

func (c *booksCatalog) Search(ctx context.Context, term, refinement string) ([]media.Summary, error) {
	query := "intitle:" + term
	if refinement != "" {
		query += "+inauthor:" + refinement
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", "20")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	var out booksListResponse
	if err := c.get(ctx, "/volumes?"+q.Encode(), &out); err != nil {
		return nil, err
	}

	results := make([]media.Summary, 0, len(out.Items))
	for _, v := range out.Items {
		results = append(results, volumeSummary(v))
	}
	return results, nil
}

func (c *booksCatalog) ByID(ctx context.Context, id, _ string) (media.Summary, error) {
	path := "/volumes/" + url.PathEscape(id)
	if c.apiKey != "" {
		path += "?key=" + url.QueryEscape(c.apiKey)
	}

	var out booksVolume
	if err := c.get(ctx, path, &out); err != nil {
		return media.Summary{}, err
	}
	if out.ID == "" {
		return media.Summary{}, ErrNotFound
	}
	return volumeSummary(out), nil
}

func (c *booksCatalog) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "review-platform/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google books: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("google books: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	return nil
}

func volumeSummary(v booksVolume) media.Summary {
	year := v.VolumeInfo.PublishedDate
	if len(year) > 4 {
		year = year[:4]
	}
	return media.Summary{
		MediaID:  v.ID,
		Title:    v.VolumeInfo.Title,
		Image:    media.NormalizeImageURL(v.VolumeInfo.ImageLinks.Thumbnail),
		Type:     media.Book,
		Year:     year,
		Synopsis: v.VolumeInfo.Description,
	}
}
