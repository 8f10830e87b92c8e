package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Setting keys for the boolean feature flags the scanner consults.
const (
	SettingTVMetadataEnabled         = "tv_metadata_enabled"
	SettingMovieMetadataEnabled      = "movie_metadata_enabled"
	SettingBookMetadataEnabled       = "book_metadata_enabled"
	SettingTVEpisodesMetadataEnabled = "tv_episodes_metadata_enabled"
	SettingSaveImagesLocally         = "save_images_locally"
)

type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:st"`

	Key       string    `bun:",pk" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
