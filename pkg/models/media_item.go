package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MediaKindTVShow = "tv_show"
	MediaKindMovie  = "movie"
)

// MediaItem is the flat catalog entity used for TV shows and movies. The
// repository-relative Path is the natural key within a kind: the same
// filesystem location always maps to the same row across scans.
type MediaItem struct {
	bun.BaseModel `bun:"table:media_items,alias:mi"`

	ID            int          `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Kind          string       `bun:",nullzero" json:"kind"`
	Title         string       `bun:",nullzero" json:"title"`
	Path          string       `bun:",nullzero" json:"path"`
	FileSize      *int64       `json:"file_size,omitempty"`
	LastScannedAt time.Time    `json:"last_scanned_at"`
	Metadata      *string      `json:"metadata,omitempty"`
	Episodes      []*TVEpisode `bun:"rel:has-many,join:id=media_item_id" json:"episodes,omitempty"`
}
