package metadata

import (
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// MovieMetadata is the enrichment blob stored on a movie MediaItem.
type MovieMetadata struct {
	Source     string   `json:"source"`
	ExternalID int      `json:"external_id"`
	Title      string   `json:"title"`
	Year       string   `json:"year,omitempty"`
	Overview   string   `json:"overview,omitempty"`
	PosterURL  string   `json:"poster_url,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Runtime    int      `json:"runtime,omitempty"`
}

// TVMetadata is the enrichment blob stored on a tv_show MediaItem. SeriesID
// is the provider's identifier, needed for per-episode lookups.
type TVMetadata struct {
	Source     string   `json:"source"`
	SeriesID   string   `json:"series_id"`
	Title      string   `json:"title"`
	Year       string   `json:"year,omitempty"`
	Overview   string   `json:"overview,omitempty"`
	PosterURL  string   `json:"poster_url,omitempty"`
	FirstAired string   `json:"first_aired,omitempty"`
	Genres     []string `json:"genres,omitempty"`
}

// EpisodeMetadata is the enrichment blob stored on a TVEpisode.
type EpisodeMetadata struct {
	Source   string `json:"source"`
	Title    string `json:"title,omitempty"`
	Overview string `json:"overview,omitempty"`
	StillURL string `json:"still_url,omitempty"`
	AirDate  string `json:"air_date,omitempty"`
}

// BookCandidate is one search result from the book provider. SeriesName and
// SeriesPosition are hints only: the filesystem hierarchy decides actual
// series placement.
type BookCandidate struct {
	ExternalID       string   `json:"external_id"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_names,omitempty"`
	SeriesName       string   `json:"series_name,omitempty"`
	SeriesPosition   *float64 `json:"series_position,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	Publishers       []string `json:"publishers,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
}

// BookMetadata is the enrichment blob stored on a Book.
type BookMetadata struct {
	Source           string   `json:"source"`
	ExternalID       string   `json:"external_id"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_names,omitempty"`
	SeriesName       string   `json:"series_name,omitempty"`
	SeriesPosition   *float64 `json:"series_position,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	Publishers       []string `json:"publishers,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
}

// FromCandidate converts a winning search candidate into the stored blob.
func FromCandidate(c *BookCandidate) *BookMetadata {
	return &BookMetadata{
		Source:           "openlibrary",
		ExternalID:       c.ExternalID,
		Title:            c.Title,
		AuthorNames:      c.AuthorNames,
		SeriesName:       c.SeriesName,
		SeriesPosition:   c.SeriesPosition,
		FirstPublishYear: c.FirstPublishYear,
		CoverURL:         c.CoverURL,
		Publishers:       c.Publishers,
		Subjects:         c.Subjects,
	}
}

// Encode marshals a metadata blob into the string form stored on catalog
// rows.
func Encode(v interface{}) (*string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s := string(data)
	return &s, nil
}
