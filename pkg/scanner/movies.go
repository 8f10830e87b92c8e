package scanner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shelfdmedia/shelfd/pkg/catalog"
	"github.com/shelfdmedia/shelfd/pkg/mediafile"
	"github.com/shelfdmedia/shelfd/pkg/metadata"
	"github.com/shelfdmedia/shelfd/pkg/models"
)

// ScanMovies walks the top level of the movie root. A bare video file is a
// movie; a directory holding video files is a movie whose largest file is
// representative. The entry name is the catalog path, so replacing the file
// inside a container keeps the same row.
func (s *Scanner) ScanMovies(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}
	log := logger.FromContext(ctx)

	root := s.config.MovieRoot
	if root == "" {
		return summary, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return summary, nil
		}
		return nil, errors.WithStack(err)
	}

	enabled, err := s.settingService.GetBool(ctx, models.SettingMovieMetadataEnabled, true)
	if err != nil {
		return nil, err
	}
	saveImages, err := s.settingService.GetBool(ctx, models.SettingSaveImagesLocally, false)
	if err != nil {
		return nil, err
	}

	fetchEnabled := enabled && !opts.SkipMetadata
	seen := map[string]bool{}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		movie, err := mediafile.ClassifyMovieEntry(root, entry)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		if movie == nil {
			continue
		}

		moviePath := entry.Name()
		seen[moviePath] = true
		opts.emit(ProgressEvent{Stage: StageScanning, Kind: models.ScanKindMovies, Path: moviePath})

		title, year := metadata.CleanTitle(movie.Title)

		prior, err := s.catalogService.RetrieveMediaItem(ctx, catalog.RetrieveMediaItemOptions{
			Kind: pointerutil.String(models.MediaKindMovie),
			Path: &moviePath,
		})
		if err != nil && !isNotFound(err) {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", moviePath, err))
			continue
		}

		var blob *string
		switch {
		case prior != nil && prior.Metadata != nil:
			blob = prior.Metadata
			opts.emit(ProgressEvent{Stage: StageCached, Kind: models.ScanKindMovies, Path: moviePath, Title: title})
		case !fetchEnabled:
			opts.emit(ProgressEvent{Stage: StageSkipped, Kind: models.ScanKindMovies, Path: moviePath, Title: title})
		default:
			opts.emit(ProgressEvent{Stage: StageFetchingMetadata, Kind: models.ScanKindMovies, Path: moviePath, Title: title})
			result, err := s.movies.Search(ctx, title, year)
			switch {
			case err != nil:
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", moviePath, err))
				opts.emit(ProgressEvent{Stage: StageNoMetadata, Kind: models.ScanKindMovies, Path: moviePath, Title: title})
			case result == nil:
				opts.emit(ProgressEvent{Stage: StageNoMetadata, Kind: models.ScanKindMovies, Path: moviePath, Title: title})
			default:
				if saveImages && result.PosterURL != "" {
					result.PosterURL = s.images.MaybeDownload(ctx, result.PosterURL, "movies", uuid.NewString())
				}
				blob, err = metadata.Encode(result)
				if err != nil {
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", moviePath, err))
				}
				opts.emit(ProgressEvent{Stage: StageMetadataFetched, Kind: models.ScanKindMovies, Path: moviePath, Title: title})
			}
		}

		item := &models.MediaItem{
			Kind:          models.MediaKindMovie,
			Title:         title,
			Path:          moviePath,
			FileSize:      &movie.FileSize,
			LastScannedAt: time.Now(),
			Metadata:      blob,
		}
		if err := s.catalogService.UpsertMediaItem(ctx, item); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", moviePath, err))
			continue
		}
		if prior == nil {
			summary.Added++
		} else {
			summary.Updated++
		}
	}

	if err := s.gcMediaItems(ctx, models.MediaKindMovie, root, seen); err != nil {
		return nil, err
	}

	log.Info("movie scan finished", logger.Data{"added": summary.Added, "updated": summary.Updated, "errors": len(summary.Errors)})
	opts.emit(ProgressEvent{Stage: StageComplete, Kind: models.ScanKindMovies})
	return summary, nil
}
