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

const defaultOMDBBaseURL = "https://www.omdbapi.com"

// omdbCatalog resolves movies through the OMDb API. Refinement is the
// release year.
type omdbCatalog struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newOMDBCatalog(apiKey, baseURL string, timeout time.Duration) *omdbCatalog {
	if baseURL == "" {
		baseURL = defaultOMDBBaseURL
	}
	return &omdbCatalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type omdbSearchResponse struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		ImdbID string `json:"imdbID"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type omdbTitleResponse struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Poster   string `json:"Poster"`
	Plot     string `json:"Plot"`
	ImdbID   string `json:"imdbID"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (c *omdbCatalog) Search(ctx context.Context, term, refinement string) ([]media.Summary, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("s", term)
	q.Set("type", "movie")
	if refinement != "" {
		q.Set("y", refinement)
	}

	var out omdbSearchResponse
	if err := c.get(ctx, q, &out); err != nil {
		return nil, err
	}
	// OMDb signals "no matches" through Response=False, not a status code.
	if !strings.EqualFold(out.Response, "True") {
		return []media.Summary{}, nil
	}

	results := make([]media.Summary, 0, len(out.Search))
	for _, m := range out.Search {
		results = append(results, media.Summary{
			MediaID: m.ImdbID,
			Title:   m.Title,
			Image:   media.NormalizeImageURL(omdbPoster(m.Poster)),
			Type:    media.Movie,
			Year:    m.Year,
		})
	}
	return results, nil
}

func (c *omdbCatalog) ByID(ctx context.Context, id, _ string) (media.Summary, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("i", id)
	q.Set("plot", "short")

	var out omdbTitleResponse
	if err := c.get(ctx, q, &out); err != nil {
		return media.Summary{}, err
	}
	if !strings.EqualFold(out.Response, "True") {
		return media.Summary{}, ErrNotFound
	}
	return media.Summary{
		MediaID:  out.ImdbID,
		Title:    out.Title,
		Image:    media.NormalizeImageURL(omdbPoster(out.Poster)),
		Type:     media.Movie,
		Year:     out.Year,
		Synopsis: out.Plot,
	}, nil
}

func (c *omdbCatalog) get(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
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
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("omdb: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	return nil
}

// omdbPoster drops the literal "N/A" OMDb uses for missing posters.
func omdbPoster(p string) string {
	if strings.EqualFold(p, "N/A") {
		return ""
	}
	return p
}
