package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookKindAudiobook = "audiobook"
	BookKindEbook     = "ebook"
)

// Book is keyed by its canonical relative path
// {audiobooks|ebooks}/Author[/Series]/Title. SeriesID is set iff the book was
// discovered inside a series folder.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	AuthorID      int       `bun:",nullzero" json:"author_id"`
	Author        *Author   `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	SeriesID      *int      `json:"series_id,omitempty"`
	Series        *Series   `bun:"rel:belongs-to,join:series_id=id" json:"series,omitempty"`
	Title         string    `bun:",nullzero" json:"title"`
	Kind          string    `bun:",nullzero" json:"kind"`
	Path          string    `bun:",nullzero" json:"path"`
	FileSize      int64     `json:"file_size"`
	LastScannedAt time.Time `json:"last_scanned_at"`
	Metadata      *string   `json:"metadata,omitempty"`
}
