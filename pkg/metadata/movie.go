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

// tmdbGenres maps the movie provider's numeric genre IDs to display names.
var tmdbGenres = map[int]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy", 80: "Crime",
	99: "Documentary", 18: "Drama", 10751: "Family", 14: "Fantasy", 36: "History",
	27: "Horror", 10402: "Music", 9648: "Mystery", 10749: "Romance",
	878: "Science Fiction", 10770: "TV Movie", 53: "Thriller", 10752: "War", 37: "Western",
}

// MovieClient talks to a TMDB-compatible movie API.
type MovieClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	pacer   *Pacer
}

func NewMovieClient(baseURL, apiKey string) *MovieClient {
	return &MovieClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		pacer:   NewPacer(MoviePacing),
	}
}

type tmdbSearchResponse struct {
	Results []struct {
		ID          int     `json:"id"`
		Title       string  `json:"title"`
		Overview    string  `json:"overview"`
		PosterPath  string  `json:"poster_path"`
		ReleaseDate string  `json:"release_date"`
		VoteAverage float64 `json:"vote_average"`
		GenreIDs    []int   `json:"genre_ids"`
	} `json:"results"`
}

// Search looks a movie up by cleaned title, retrying without the year when a
// year-scoped search comes back empty. Returns nil with no error when the
// provider has no match.
func (c *MovieClient) Search(ctx context.Context, title, year string) (*MovieMetadata, error) {
	if c.apiKey == "" {
		return nil, errors.New("movie api key not configured")
	}

	result, err := c.search(ctx, title, year)
	if err != nil {
		return nil, err
	}
	if result == nil && year != "" {
		result, err = c.search(ctx, title, "")
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *MovieClient) search(ctx context.Context, title, year string) (*MovieMetadata, error) {
	reqURL := fmt.Sprintf("%s/search/movie?api_key=%s&query=%s",
		c.baseURL, c.apiKey, url.QueryEscape(title))
	if year != "" {
		reqURL += "&year=" + year
	}

	var result tmdbSearchResponse
	if err := c.get(ctx, reqURL, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, nil
	}

	r := result.Results[0]

	m := &MovieMetadata{
		Source:     "tmdb",
		ExternalID: r.ID,
		Title:      r.Title,
		Overview:   r.Overview,
		Rating:     r.VoteAverage,
	}
	if len(r.ReleaseDate) >= 4 {
		m.Year = r.ReleaseDate[:4]
	}
	if r.PosterPath != "" {
		m.PosterURL = "https://image.tmdb.org/t/p/w500" + r.PosterPath
	}
	for _, gid := range r.GenreIDs {
		if name, ok := tmdbGenres[gid]; ok {
			m.Genres = append(m.Genres, name)
		}
	}

	// Runtime only comes back from the details endpoint.
	if runtime, err := c.runtime(ctx, r.ID); err == nil {
		m.Runtime = runtime
	}

	return m, nil
}

func (c *MovieClient) runtime(ctx context.Context, id int) (int, error) {
	reqURL := fmt.Sprintf("%s/movie/%d?api_key=%s", c.baseURL, id, c.apiKey)

	var details struct {
		Runtime int `json:"runtime"`
	}
	if err := c.get(ctx, reqURL, &details); err != nil {
		return 0, err
	}
	return details.Runtime, nil
}

func (c *MovieClient) get(ctx context.Context, reqURL string, out interface{}) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("movie provider returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
