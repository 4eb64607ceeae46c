package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/review-platform/internal/media"
)

const defaultJikanBaseURL = "https://api.jikan.moe/v4"

// jikanCatalog resolves anime and manga through the Jikan v4 API. One
// instance serves a single kind; the refinement parameter is ignored.
type jikanCatalog struct {
	kind    media.Type
	baseURL string
	client  *http.Client
}

func newJikanCatalog(kind media.Type, baseURL string, timeout time.Duration) *jikanCatalog {
	if baseURL == "" {
		baseURL = defaultJikanBaseURL
	}
	return &jikanCatalog{
		kind:    kind,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type jikanEntry struct {
	MalID    int    `json:"mal_id"`
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	Year     int    `json:"year"`
	Images   struct {
		JPG struct {
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
}

type jikanListResponse struct {
	Data []jikanEntry `json:"data"`
}

func (c *jikanCatalog) Search(ctx context.Context, term, _ string) ([]media.Summary, error) {
	out, err := c.search(ctx, term, 20)
	if err != nil {
		return nil, err
	}
	results := make([]media.Summary, 0, len(out.Data))
	for _, e := range out.Data {
		results = append(results, c.entrySummary(e))
	}
	return results, nil
}

// ByID re-searches by the title hint and picks the entry whose mal_id
// matches; Jikan search is more forgiving than its id endpoint under the
// anonymous rate limit.
func (c *jikanCatalog) ByID(ctx context.Context, id, titleHint string) (media.Summary, error) {
	if titleHint == "" {
		return media.Summary{}, ErrNotFound
	}
	out, err := c.search(ctx, titleHint, 10)
	if err != nil {
		return media.Summary{}, err
	}
	for _, e := range out.Data {
		if strconv.Itoa(e.MalID) == id {
			return c.entrySummary(e), nil
		}
	}
	// Fall back to the closest match by title.
	for _, e := range out.Data {
		if strings.EqualFold(e.Title, titleHint) {
			return c.entrySummary(e), nil
		}
	}
	if len(out.Data) > 0 {
		return c.entrySummary(out.Data[0]), nil
	}
	return media.Summary{}, ErrNotFound
}

func (c *jikanCatalog) search(ctx context.Context, term string, limit int) (*jikanListResponse, error) {
	path := "/anime"
	if c.kind == media.Manga {
		path = "/manga"
	}
	u := fmt.Sprintf("%s%s?q=%s&limit=%d&order_by=popularity&sort=asc",
		c.baseURL, path, url.QueryEscape(term), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "review-platform/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jikan: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	var out jikanListResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("jikan: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	return &out, nil
}

func (c *jikanCatalog) entrySummary(e jikanEntry) media.Summary {
	year := ""
	if e.Year > 0 {
		year = strconv.Itoa(e.Year)
	}
	return media.Summary{
		MediaID:  strconv.Itoa(e.MalID),
		Title:    e.Title,
		Image:    media.NormalizeImageURL(e.Images.JPG.LargeImageURL),
		Type:     c.kind,
		Year:     year,
		Synopsis: e.Synopsis,
	}
}
