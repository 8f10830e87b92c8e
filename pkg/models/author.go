package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Author is identified by name. Authors with no remaining books of either
// kind are garbage-collected at the start of a book scan.
type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Name          string    `bun:",nullzero" json:"name"`
	LastScannedAt time.Time `json:"last_scanned_at"`
	Metadata      *string   `json:"metadata,omitempty"`
	Series        []*Series `bun:"rel:has-many,join:id=author_id" json:"series,omitempty"`
	Books         []*Book   `bun:"rel:has-many,join:id=author_id" json:"books,omitempty"`
}
