package scanner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shelfdmedia/shelfd/pkg/catalog"
	"github.com/shelfdmedia/shelfd/pkg/config"
	"github.com/shelfdmedia/shelfd/pkg/errcodes"
	"github.com/shelfdmedia/shelfd/pkg/metadata"
	"github.com/shelfdmedia/shelfd/pkg/models"
	"github.com/shelfdmedia/shelfd/pkg/settings"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// Progress stages, emitted in order per catalog entry: scanning first, then
// exactly one of fetching_metadata (followed by metadata_fetched or
// no_metadata), cached, or skipped. A single complete event closes each kind.
const (
	StageScanning         = "scanning"
	StageFetchingMetadata = "fetching_metadata"
	StageMetadataFetched  = "metadata_fetched"
	StageNoMetadata       = "no_metadata"
	StageCached           = "cached"
	StageSkipped          = "skipped"
	StageComplete         = "complete"
)

type ProgressEvent struct {
	Stage string `json:"stage"`
	Kind  string `json:"kind"`
	Path  string `json:"path,omitempty"`
	Title string `json:"title,omitempty"`
}

// ProgressFunc receives scan progress. It is called synchronously from the
// scan goroutine, so implementations should return quickly.
type ProgressFunc func(ProgressEvent)

type Options struct {
	// SkipMetadata disables enrichment for the whole pass regardless of the
	// per-kind settings. Used for the fast first-boot scan.
	SkipMetadata bool
	Progress     ProgressFunc
}

func (o Options) emit(e ProgressEvent) {
	if o.Progress != nil {
		o.Progress(e)
	}
}

// Summary is the per-kind outcome of a scan pass. Added counts entries whose
// path was new to the catalog; Updated counts re-scanned ones. Errors holds
// one message per entry that failed, without aborting the pass.
type Summary struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// Report aggregates the summaries of one scan job.
type Report struct {
	TV     *Summary `json:"tv,omitempty"`
	Movies *Summary `json:"movies,omitempty"`
	Books  *Summary `json:"books,omitempty"`
}

// MovieProvider looks movies up by cleaned title.
type MovieProvider interface {
	Search(ctx context.Context, title, year string) (*metadata.MovieMetadata, error)
}

// TVProvider looks series and episodes up. Search errors wrapping
// metadata.ErrAuthFailed short-circuit enrichment for the rest of the pass.
type TVProvider interface {
	Search(ctx context.Context, title, year string) (*metadata.TVMetadata, error)
	Episode(ctx context.Context, seriesID string, season, episode int) (*metadata.EpisodeMetadata, error)
}

// BookProvider returns raw candidates; disambiguation happens in the engine.
type BookProvider interface {
	Search(ctx context.Context, title, authorHint string) ([]*metadata.BookCandidate, error)
}

// Scanner walks the configured media roots and reconciles the catalog with
// what's on disk.
type Scanner struct {
	config         *config.Config
	catalogService *catalog.Service
	settingService *settings.Service

	movies MovieProvider
	tv     TVProvider
	books  BookProvider
	images *metadata.ImageCache
}

func New(cfg *config.Config, db *bun.DB) *Scanner {
	return &Scanner{
		config:         cfg,
		catalogService: catalog.NewService(db),
		settingService: settings.NewService(db),
		movies:         metadata.NewMovieClient(cfg.MovieBaseURL, cfg.MovieAPIKey),
		tv:             metadata.NewTVClient(cfg.TVBaseURL, cfg.TVAPIKey),
		books:          metadata.NewBookClient(cfg.BookBaseURL),
		images:         metadata.NewImageCache(cfg.ImageCacheDir),
	}
}

// Scan dispatches one scan job by kind.
func (s *Scanner) Scan(ctx context.Context, kind string, opts Options) (*Report, error) {
	switch kind {
	case models.ScanKindAll:
		return s.ScanAll(ctx, opts)
	case models.ScanKindTV:
		summary, err := s.ScanTV(ctx, opts)
		return &Report{TV: summary}, err
	case models.ScanKindMovies:
		summary, err := s.ScanMovies(ctx, opts)
		return &Report{Movies: summary}, err
	case models.ScanKindBooks:
		summary, err := s.ScanBooks(ctx, opts)
		return &Report{Books: summary}, err
	}
	return nil, errors.Errorf("unknown scan kind %q", kind)
}

// ScanAll runs the three kind scans concurrently. Each kind talks to its own
// provider, so they don't contend on rate limits.
func (s *Scanner) ScanAll(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.ScanTV(gctx, opts)
		report.TV = summary
		return err
	})
	g.Go(func() error {
		summary, err := s.ScanMovies(gctx, opts)
		report.Movies = summary
		return err
	})
	g.Go(func() error {
		summary, err := s.ScanBooks(gctx, opts)
		report.Books = summary
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}

func isNotFound(err error) bool {
	var e *errcodes.Error
	return errors.As(err, &e) && e.Code == "not_found"
}
