package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfdmedia/shelfd/pkg/catalog"
	"github.com/shelfdmedia/shelfd/pkg/mediafile"
	"github.com/shelfdmedia/shelfd/pkg/metadata"
	"github.com/shelfdmedia/shelfd/pkg/models"
)

// bookKindRoot is one scannable kind directory: audiobooks/ or ebooks/.
type bookKindRoot struct {
	dir    string // absolute directory to walk
	prefix string // leading segment of canonical book paths
	kind   string
}

// ScanBooks reconciles the book hierarchy. The garbage-collection pass runs
// first and strictly ordered: books whose canonical path is gone, then
// series with no books left, then authors with no books left. The walk then
// rebuilds author -> (series ->) book from the directory layout; the layout
// is authoritative, so a fetched series hint never re-parents a book.
func (s *Scanner) ScanBooks(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}
	log := logger.FromContext(ctx)

	root := s.config.BookRoot
	if root == "" {
		return summary, nil
	}
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return summary, nil
		}
		return nil, errors.WithStack(err)
	}

	base, kindRoots := bookRoots(root)
	if len(kindRoots) == 0 {
		return summary, nil
	}

	if err := s.gcBooks(ctx, base); err != nil {
		return nil, err
	}

	enabled, err := s.settingService.GetBool(ctx, models.SettingBookMetadataEnabled, true)
	if err != nil {
		return nil, err
	}
	saveImages, err := s.settingService.GetBool(ctx, models.SettingSaveImagesLocally, false)
	if err != nil {
		return nil, err
	}
	fetchEnabled := enabled && !opts.SkipMetadata

	for _, kindRoot := range kindRoots {
		if err := s.scanBookKind(ctx, opts, summary, kindRoot, fetchEnabled, saveImages); err != nil {
			return nil, err
		}
	}

	log.Info("book scan finished", logger.Data{"added": summary.Added, "updated": summary.Updated, "errors": len(summary.Errors)})
	opts.emit(ProgressEvent{Stage: StageComplete, Kind: models.ScanKindBooks})
	return summary, nil
}

// bookRoots resolves the configured root into kind directories. The root is
// either the parent of audiobooks/ and ebooks/, or one of those directories
// itself. base is the directory canonical book paths are relative to.
func bookRoots(root string) (base string, roots []bookKindRoot) {
	kinds := []struct {
		name string
		kind string
	}{
		{"audiobooks", models.BookKindAudiobook},
		{"ebooks", models.BookKindEbook},
	}

	for _, k := range kinds {
		dir := filepath.Join(root, k.name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			roots = append(roots, bookKindRoot{dir: dir, prefix: k.name, kind: k.kind})
		}
	}
	if len(roots) > 0 {
		return root, roots
	}

	for _, k := range kinds {
		if filepath.Base(root) == k.name {
			return filepath.Dir(root), []bookKindRoot{{dir: root, prefix: k.name, kind: k.kind}}
		}
	}
	return root, nil
}

// gcBooks drops rows that no longer correspond to the filesystem, children
// before parents so the emptiness checks see the current state.
func (s *Scanner) gcBooks(ctx context.Context, base string) error {
	books, err := s.catalogService.ListBooks(ctx, catalog.ListBooksOptions{})
	if err != nil {
		return err
	}
	for _, book := range books {
		if _, err := os.Stat(filepath.Join(base, book.Path)); err == nil {
			continue
		}
		if err := s.catalogService.DeleteBook(ctx, book.ID); err != nil {
			return err
		}
	}

	series, err := s.catalogService.ListSeries(ctx, catalog.ListSeriesOptions{})
	if err != nil {
		return err
	}
	for _, sr := range series {
		count, err := s.catalogService.CountBooksBySeries(ctx, sr.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			if err := s.catalogService.DeleteSeries(ctx, sr.ID); err != nil {
				return err
			}
		}
	}

	authors, err := s.catalogService.ListAuthors(ctx)
	if err != nil {
		return err
	}
	for _, author := range authors {
		count, err := s.catalogService.CountBooksByAuthor(ctx, author.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			if err := s.catalogService.DeleteAuthor(ctx, author.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Scanner) scanBookKind(ctx context.Context, opts Options, summary *Summary, kindRoot bookKindRoot, fetchEnabled, saveImages bool) error {
	exts := mediafile.BookKindExtensions(kindRoot.kind)

	authorEntries, err := os.ReadDir(kindRoot.dir)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, authorEntry := range authorEntries {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		if !authorEntry.IsDir() {
			continue
		}

		authorName := authorEntry.Name()
		authorDir := filepath.Join(kindRoot.dir, authorName)

		// The author row is created lazily on the first book so empty
		// folders never produce orphans.
		var authorID int
		ensureAuthor := func() (int, error) {
			if authorID != 0 {
				return authorID, nil
			}
			author := &models.Author{Name: authorName, LastScannedAt: time.Now()}
			if err := s.catalogService.UpsertAuthor(ctx, author); err != nil {
				return 0, err
			}
			authorID = author.ID
			return authorID, nil
		}

		children, err := os.ReadDir(authorDir)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", authorName, err))
			continue
		}

		for _, child := range children {
			if !child.IsDir() {
				continue
			}
			childPath := filepath.Join(authorDir, child.Name())

			dirKind, err := mediafile.ClassifyBookDirectory(childPath, exts)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", childPath, err))
				continue
			}

			switch dirKind {
			case mediafile.BookDirStandalone:
				s.processBook(ctx, opts, summary, bookLocation{
					kindRoot:   kindRoot,
					authorName: authorName,
					title:      child.Name(),
					dir:        childPath,
				}, ensureAuthor, fetchEnabled, saveImages)
			case mediafile.BookDirSeries:
				seriesName := child.Name()
				bookEntries, err := os.ReadDir(childPath)
				if err != nil {
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", childPath, err))
					continue
				}
				for _, bookEntry := range bookEntries {
					if !bookEntry.IsDir() {
						continue
					}
					s.processBook(ctx, opts, summary, bookLocation{
						kindRoot:   kindRoot,
						authorName: authorName,
						seriesName: seriesName,
						title:      bookEntry.Name(),
						dir:        filepath.Join(childPath, bookEntry.Name()),
					}, ensureAuthor, fetchEnabled, saveImages)
				}
			}
		}
	}

	return nil
}

type bookLocation struct {
	kindRoot   bookKindRoot
	authorName string
	seriesName string // empty for standalone books
	title      string
	dir        string
}

// relPath is the canonical catalog path: {audiobooks|ebooks}/Author[/Series]/Title.
func (loc bookLocation) relPath() string {
	if loc.seriesName != "" {
		return filepath.Join(loc.kindRoot.prefix, loc.authorName, loc.seriesName, loc.title)
	}
	return filepath.Join(loc.kindRoot.prefix, loc.authorName, loc.title)
}

func (s *Scanner) processBook(ctx context.Context, opts Options, summary *Summary, loc bookLocation, ensureAuthor func() (int, error), fetchEnabled, saveImages bool) {
	relPath := loc.relPath()

	count, totalSize, err := mediafile.SumBookFiles(loc.dir, mediafile.BookKindExtensions(loc.kindRoot.kind))
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
		return
	}
	if count == 0 {
		return
	}

	opts.emit(ProgressEvent{Stage: StageScanning, Kind: models.ScanKindBooks, Path: relPath, Title: loc.title})

	authorID, err := ensureAuthor()
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
		return
	}

	var seriesID *int
	if loc.seriesName != "" {
		series := &models.Series{AuthorID: authorID, Name: loc.seriesName, LastScannedAt: time.Now()}
		if err := s.catalogService.UpsertSeries(ctx, series); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
			return
		}
		seriesID = &series.ID
	}

	prior, err := s.catalogService.RetrieveBook(ctx, catalog.RetrieveBookOptions{Path: &relPath})
	if err != nil && !isNotFound(err) {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
		return
	}

	var blob *string
	switch {
	case prior != nil && prior.Metadata != nil:
		blob = prior.Metadata
		opts.emit(ProgressEvent{Stage: StageCached, Kind: models.ScanKindBooks, Path: relPath, Title: loc.title})
	case !fetchEnabled:
		opts.emit(ProgressEvent{Stage: StageSkipped, Kind: models.ScanKindBooks, Path: relPath, Title: loc.title})
	default:
		opts.emit(ProgressEvent{Stage: StageFetchingMetadata, Kind: models.ScanKindBooks, Path: relPath, Title: loc.title})
		candidates, err := s.books.Search(ctx, loc.title, loc.authorName)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
			opts.emit(ProgressEvent{Stage: StageNoMetadata, Kind: models.ScanKindBooks, Path: relPath, Title: loc.title})
			break
		}
		picked := metadata.PickBookCandidate(loc.title, loc.authorName, candidates)
		if picked == nil {
			opts.emit(ProgressEvent{Stage: StageNoMetadata, Kind: models.ScanKindBooks, Path: relPath, Title: loc.title})
			break
		}
		result := metadata.FromCandidate(picked)
		if saveImages && result.CoverURL != "" {
			result.CoverURL = s.images.MaybeDownload(ctx, result.CoverURL, "books", uuid.NewString())
		}
		blob, err = metadata.Encode(result)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
		}
		opts.emit(ProgressEvent{Stage: StageMetadataFetched, Kind: models.ScanKindBooks, Path: relPath, Title: loc.title})
	}

	book := &models.Book{
		AuthorID:      authorID,
		SeriesID:      seriesID,
		Title:         loc.title,
		Kind:          loc.kindRoot.kind,
		Path:          relPath,
		FileSize:      totalSize,
		LastScannedAt: time.Now(),
		Metadata:      blob,
	}
	if err := s.catalogService.UpsertBook(ctx, book); err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
		return
	}
	if prior == nil {
		summary.Added++
	} else {
		summary.Updated++
	}
}
