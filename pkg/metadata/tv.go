package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// ErrAuthFailed marks a rejected login with the TV provider. The scan engine
// stops trying to enrich the remaining shows in the pass when it sees this.
var ErrAuthFailed = errors.New("tv provider authentication failed")

// Tokens are valid far longer than this, but refreshing early costs one
// request per day at most.
const tvTokenTTL = 24 * time.Hour

// TVClient talks to a TVDB v4-compatible API. Logins are cached: a token is
// fetched once and reused until its freshness window lapses.
type TVClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	pacer   *Pacer

	mu        sync.Mutex
	token     string
	fetchedAt time.Time
}

func NewTVClient(baseURL, apiKey string) *TVClient {
	return &TVClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		pacer:   NewPacer(TVPacing),
	}
}

func (c *TVClient) authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Since(c.fetchedAt) < tvTokenTTL {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return "", errors.WithStack(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(string(body)))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ErrAuthFailed, "login returned %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.WithStack(err)
	}
	if result.Data.Token == "" {
		return "", errors.Wrap(ErrAuthFailed, "login returned empty token")
	}

	c.token = result.Data.Token
	c.fetchedAt = time.Now()
	return c.token, nil
}

func (c *TVClient) get(ctx context.Context, endpoint string, out interface{}) error {
	token, err := c.authenticate(ctx)
	if err != nil {
		return err
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("tv provider returned %d for %s", resp.StatusCode, endpoint)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Search looks a series up by cleaned title. The first result wins; a
// year-scoped search that comes back empty is retried without the year.
// Returns nil with no error when the provider has no match.
func (c *TVClient) Search(ctx context.Context, title, year string) (*TVMetadata, error) {
	if c.apiKey == "" {
		return nil, errors.New("tv api key not configured")
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

func (c *TVClient) search(ctx context.Context, title, year string) (*TVMetadata, error) {
	endpoint := fmt.Sprintf("/search?query=%s&type=series", url.QueryEscape(title))
	if year != "" {
		endpoint += "&year=" + year
	}

	var result struct {
		Data []struct {
			TVDBID   string   `json:"tvdb_id"`
			ObjectID string   `json:"objectID"`
			Name     string   `json:"name"`
			Overview string   `json:"overview"`
			ImageURL string   `json:"image_url"`
			Year     string   `json:"year"`
			Genres   []string `json:"genres"`
		} `json:"data"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, nil
	}

	r := result.Data[0]
	seriesID := r.TVDBID
	if seriesID == "" {
		seriesID = r.ObjectID
	}

	return &TVMetadata{
		Source:    "tvdb",
		SeriesID:  seriesID,
		Title:     r.Name,
		Year:      r.Year,
		Overview:  r.Overview,
		PosterURL: r.ImageURL,
		Genres:    r.Genres,
	}, nil
}

// Episode fetches metadata for one episode of a known series. Returns nil
// with no error when the provider doesn't know the episode.
func (c *TVClient) Episode(ctx context.Context, seriesID string, season, episode int) (*EpisodeMetadata, error) {
	if c.apiKey == "" {
		return nil, errors.New("tv api key not configured")
	}

	endpoint := fmt.Sprintf("/series/%s/episodes/default?page=0&season=%d&episodeNumber=%d",
		url.PathEscape(seriesID), season, episode)

	var result struct {
		Data struct {
			Episodes []struct {
				Name     string `json:"name"`
				Overview string `json:"overview"`
				Image    string `json:"image"`
				Aired    string `json:"aired"`
			} `json:"episodes"`
		} `json:"data"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	if len(result.Data.Episodes) == 0 {
		return nil, nil
	}

	e := result.Data.Episodes[0]
	return &EpisodeMetadata{
		Source:   "tvdb",
		Title:    e.Name,
		Overview: e.Overview,
		StillURL: e.Image,
		AirDate:  e.Aired,
	}, nil
}
