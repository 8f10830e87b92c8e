package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Series is identified by (author_id, name). A series folder on disk is
// authoritative: fetched metadata never re-parents a book into or out of one.
type Series struct {
	bun.BaseModel `bun:"table:series,alias:s"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	AuthorID      int       `bun:",nullzero" json:"author_id"`
	Author        *Author   `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Name          string    `bun:",nullzero" json:"name"`
	LastScannedAt time.Time `json:"last_scanned_at"`
	Metadata      *string   `json:"metadata,omitempty"`
	Books         []*Book   `bun:"rel:has-many,join:id=series_id" json:"books,omitempty"`
}
