package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfdmedia/shelfd/pkg/errcodes"
	"github.com/shelfdmedia/shelfd/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveMediaItemOptions struct {
	ID   *int
	Kind *string
	Path *string
}

type ListMediaItemsOptions struct {
	Limit  *int
	Offset *int
	Kind   *string

	includeTotal bool
}

type ListEpisodesOptions struct {
	MediaItemID *int
}

type RetrieveBookOptions struct {
	ID   *int
	Path *string
}

type ListBooksOptions struct {
	Limit    *int
	Offset   *int
	AuthorID *int
	SeriesID *int
	Kind     *string

	includeTotal bool
}

type ListSeriesOptions struct {
	AuthorID *int
}

type RetrieveAuthorOptions struct {
	ID   *int
	Name *string
}

// Service is the catalog store. All scanner reads and writes go through it;
// upserts are atomic ON CONFLICT statements keyed by path (or name for
// authors), so two concurrent scans of the same path cannot race a
// check-then-write window.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) UpsertMediaItem(ctx context.Context, item *models.MediaItem) error {
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(item).
		On("CONFLICT (kind, path) DO UPDATE").
		Set("updated_at = EXCLUDED.updated_at").
		Set("title = EXCLUDED.title").
		Set("file_size = EXCLUDED.file_size").
		Set("last_scanned_at = EXCLUDED.last_scanned_at").
		Set("metadata = EXCLUDED.metadata").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveMediaItem(ctx context.Context, opts RetrieveMediaItemOptions) (*models.MediaItem, error) {
	item := &models.MediaItem{}

	q := svc.db.
		NewSelect().
		Model(item)

	if opts.ID != nil {
		q = q.Where("mi.id = ?", *opts.ID)
	}
	if opts.Kind != nil {
		q = q.Where("mi.kind = ?", *opts.Kind)
	}
	if opts.Path != nil {
		q = q.Where("mi.path = ?", *opts.Path)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("MediaItem")
		}
		return nil, errors.WithStack(err)
	}

	return item, nil
}

func (svc *Service) ListMediaItems(ctx context.Context, opts ListMediaItemsOptions) ([]*models.MediaItem, error) {
	items, _, err := svc.listMediaItemsWithTotal(ctx, opts)
	return items, errors.WithStack(err)
}

func (svc *Service) ListMediaItemsWithTotal(ctx context.Context, opts ListMediaItemsOptions) ([]*models.MediaItem, int, error) {
	opts.includeTotal = true
	return svc.listMediaItemsWithTotal(ctx, opts)
}

func (svc *Service) listMediaItemsWithTotal(ctx context.Context, opts ListMediaItemsOptions) ([]*models.MediaItem, int, error) {
	items := []*models.MediaItem{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&items).
		Order("mi.title ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Kind != nil {
		q = q.Where("mi.kind = ?", *opts.Kind)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return items, total, nil
}

func (svc *Service) DeleteMediaItem(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.MediaItem)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) UpsertEpisode(ctx context.Context, ep *models.TVEpisode) error {
	now := time.Now()
	if ep.CreatedAt.IsZero() {
		ep.CreatedAt = now
	}
	ep.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(ep).
		On("CONFLICT (filepath) DO UPDATE").
		Set("updated_at = EXCLUDED.updated_at").
		Set("media_item_id = EXCLUDED.media_item_id").
		Set("season_number = EXCLUDED.season_number").
		Set("episode_number = EXCLUDED.episode_number").
		Set("title = EXCLUDED.title").
		Set("file_size = EXCLUDED.file_size").
		Set("last_scanned_at = EXCLUDED.last_scanned_at").
		Set("metadata = EXCLUDED.metadata").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveEpisodeByPath(ctx context.Context, path string) (*models.TVEpisode, error) {
	ep := &models.TVEpisode{}

	err := svc.db.
		NewSelect().
		Model(ep).
		Where("ep.filepath = ?", path).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("TVEpisode")
		}
		return nil, errors.WithStack(err)
	}

	return ep, nil
}

func (svc *Service) ListEpisodes(ctx context.Context, opts ListEpisodesOptions) ([]*models.TVEpisode, error) {
	episodes := []*models.TVEpisode{}

	q := svc.db.
		NewSelect().
		Model(&episodes).
		Order("ep.season_number ASC", "ep.episode_number ASC")

	if opts.MediaItemID != nil {
		q = q.Where("ep.media_item_id = ?", *opts.MediaItemID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return episodes, nil
}

func (svc *Service) DeleteEpisode(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.TVEpisode)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) UpsertAuthor(ctx context.Context, author *models.Author) error {
	if author.CreatedAt.IsZero() {
		author.CreatedAt = time.Now()
	}

	_, err := svc.db.
		NewInsert().
		Model(author).
		On("CONFLICT (name) DO UPDATE").
		// metadata is intentionally not in the SET list: the scanner passes
		// nil on re-sighting and must not clobber an enriched blob.
		Set("last_scanned_at = EXCLUDED.last_scanned_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrieveAuthorOptions) (*models.Author, error) {
	author := &models.Author{}

	q := svc.db.
		NewSelect().
		Model(author)

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("a.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

func (svc *Service) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}

	err := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return authors, nil
}

func (svc *Service) DeleteAuthor(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Author)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) UpsertSeries(ctx context.Context, series *models.Series) error {
	if series.CreatedAt.IsZero() {
		series.CreatedAt = time.Now()
	}

	_, err := svc.db.
		NewInsert().
		Model(series).
		On("CONFLICT (author_id, name) DO UPDATE").
		// Same as authors: re-sighting must not null out stored metadata.
		Set("last_scanned_at = EXCLUDED.last_scanned_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) ListSeries(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, error) {
	series := []*models.Series{}

	q := svc.db.
		NewSelect().
		Model(&series).
		Order("s.name ASC")

	if opts.AuthorID != nil {
		q = q.Where("s.author_id = ?", *opts.AuthorID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return series, nil
}

func (svc *Service) DeleteSeries(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Series)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) UpsertBook(ctx context.Context, book *models.Book) error {
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}

	_, err := svc.db.
		NewInsert().
		Model(book).
		On("CONFLICT (path) DO UPDATE").
		Set("author_id = EXCLUDED.author_id").
		Set("series_id = EXCLUDED.series_id").
		Set("title = EXCLUDED.title").
		Set("kind = EXCLUDED.kind").
		Set("file_size = EXCLUDED.file_size").
		Set("last_scanned_at = EXCLUDED.last_scanned_at").
		Set("metadata = EXCLUDED.metadata").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Relation("Series")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.Path != nil {
		q = q.Where("b.path = ?", *opts.Path)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books, _, err := svc.listBooksWithTotal(ctx, opts)
	return books, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Relation("Series").
		Order("b.title ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.SeriesID != nil {
		q = q.Where("b.series_id = ?", *opts.SeriesID)
	}
	if opts.Kind != nil {
		q = q.Where("b.kind = ?", *opts.Kind)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

// CountBooksBySeries returns the number of books still referencing the series.
func (svc *Service) CountBooksBySeries(ctx context.Context, seriesID int) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("series_id = ?", seriesID).
		Count(ctx)
	return count, errors.WithStack(err)
}

// CountBooksByAuthor returns the number of books of either kind still
// referencing the author.
func (svc *Service) CountBooksByAuthor(ctx context.Context, authorID int) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("author_id = ?", authorID).
		Count(ctx)
	return count, errors.WithStack(err)
}
