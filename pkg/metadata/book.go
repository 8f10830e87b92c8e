package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// BookClient talks to an Open Library-compatible search API. No key is
// required.
type BookClient struct {
	baseURL string
	client  *http.Client
	pacer   *Pacer
}

func NewBookClient(baseURL string) *BookClient {
	return &BookClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		pacer:   NewPacer(BookPacing),
	}
}

type openLibraryDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverI           int      `json:"cover_i"`
	Subject          []string `json:"subject"`
	Publisher        []string `json:"publisher"`
	Series           []string `json:"series"`
}

// Search returns the raw candidate list for a title, scoped by author when a
// hint is available. Disambiguation happens in PickBookCandidate; the order
// here preserves the provider's relevance ranking.
func (c *BookClient) Search(ctx context.Context, title, authorHint string) ([]*BookCandidate, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/search.json?q=%s&limit=10", c.baseURL, url.QueryEscape(title))
	if authorHint != "" {
		reqURL += "&author=" + url.QueryEscape(authorHint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("book provider returned %d", resp.StatusCode)
	}

	var result struct {
		Docs []openLibraryDoc `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.WithStack(err)
	}

	candidates := make([]*BookCandidate, 0, len(result.Docs))
	for _, d := range result.Docs {
		candidate := &BookCandidate{
			ExternalID:       d.Key,
			Title:            d.Title,
			AuthorNames:      d.AuthorName,
			FirstPublishYear: d.FirstPublishYear,
			Publishers:       d.Publisher,
		}
		if d.CoverI > 0 {
			candidate.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", d.CoverI)
		}
		if len(d.Subject) > 0 {
			limit := 5
			if len(d.Subject) < limit {
				limit = len(d.Subject)
			}
			candidate.Subjects = d.Subject[:limit]
		}
		if len(d.Series) > 0 {
			candidate.SeriesName = d.Series[0]
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}
