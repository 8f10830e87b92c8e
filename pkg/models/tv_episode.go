package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TVEpisode is owned by its show and keyed by the joined relative path
// show/season/file. Rows cascade when the show row is deleted.
type TVEpisode struct {
	bun.BaseModel `bun:"table:tv_episodes,alias:ep"`

	ID            int        `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	MediaItemID   int        `bun:",nullzero" json:"media_item_id"`
	MediaItem     *MediaItem `bun:"rel:belongs-to,join:media_item_id=id" json:"media_item,omitempty"`
	SeasonNumber  int        `json:"season_number"`
	EpisodeNumber int        `json:"episode_number"`
	Title         string     `bun:",nullzero" json:"title"`
	Filepath      string     `bun:",nullzero" json:"filepath"`
	FileSize      int64      `json:"file_size"`
	LastScannedAt time.Time  `json:"last_scanned_at"`
	Metadata      *string    `json:"metadata,omitempty"`
}
