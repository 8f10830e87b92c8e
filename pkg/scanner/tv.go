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
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/segmentio/encoding/json"
	"github.com/shelfdmedia/shelfd/pkg/catalog"
	"github.com/shelfdmedia/shelfd/pkg/mediafile"
	"github.com/shelfdmedia/shelfd/pkg/metadata"
	"github.com/shelfdmedia/shelfd/pkg/models"
)

// ScanTV walks the TV root as show/season/episode. Every directory at the
// top level is a show; directories inside it matching a season pattern hold
// the episode files. A missing or unset root yields an empty summary without
// touching the catalog.
func (s *Scanner) ScanTV(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}
	log := logger.FromContext(ctx)

	root := s.config.TVRoot
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

	enabled, err := s.settingService.GetBool(ctx, models.SettingTVMetadataEnabled, true)
	if err != nil {
		return nil, err
	}
	episodesEnabled, err := s.settingService.GetBool(ctx, models.SettingTVEpisodesMetadataEnabled, true)
	if err != nil {
		return nil, err
	}
	saveImages, err := s.settingService.GetBool(ctx, models.SettingSaveImagesLocally, false)
	if err != nil {
		return nil, err
	}

	fetchEnabled := enabled && !opts.SkipMetadata
	authFailed := false

	seenShows := map[string]bool{}
	seenEpisodes := map[string]bool{}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		if !entry.IsDir() {
			continue
		}

		showPath := entry.Name()
		seenShows[showPath] = true
		opts.emit(ProgressEvent{Stage: StageScanning, Kind: models.ScanKindTV, Path: showPath})

		title, year := metadata.CleanTitle(entry.Name())

		prior, err := s.catalogService.RetrieveMediaItem(ctx, catalog.RetrieveMediaItemOptions{
			Kind: pointerutil.String(models.MediaKindTVShow),
			Path: &showPath,
		})
		if err != nil && !isNotFound(err) {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", showPath, err))
			continue
		}

		var blob *string
		switch {
		case prior != nil && prior.Metadata != nil:
			blob = prior.Metadata
			opts.emit(ProgressEvent{Stage: StageCached, Kind: models.ScanKindTV, Path: showPath, Title: title})
		case !fetchEnabled || authFailed:
			opts.emit(ProgressEvent{Stage: StageSkipped, Kind: models.ScanKindTV, Path: showPath, Title: title})
		default:
			opts.emit(ProgressEvent{Stage: StageFetchingMetadata, Kind: models.ScanKindTV, Path: showPath, Title: title})
			result, err := s.tv.Search(ctx, title, year)
			switch {
			case errors.Is(err, metadata.ErrAuthFailed):
				// One rejected login means they all will be; stop trying for
				// the rest of the pass.
				authFailed = true
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", showPath, err))
				opts.emit(ProgressEvent{Stage: StageSkipped, Kind: models.ScanKindTV, Path: showPath, Title: title})
			case err != nil:
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", showPath, err))
				opts.emit(ProgressEvent{Stage: StageNoMetadata, Kind: models.ScanKindTV, Path: showPath, Title: title})
			case result == nil:
				opts.emit(ProgressEvent{Stage: StageNoMetadata, Kind: models.ScanKindTV, Path: showPath, Title: title})
			default:
				if saveImages && result.PosterURL != "" {
					result.PosterURL = s.images.MaybeDownload(ctx, result.PosterURL, "tv", uuid.NewString())
				}
				blob, err = metadata.Encode(result)
				if err != nil {
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", showPath, err))
				}
				opts.emit(ProgressEvent{Stage: StageMetadataFetched, Kind: models.ScanKindTV, Path: showPath, Title: title})
			}
		}

		item := &models.MediaItem{
			Kind:          models.MediaKindTVShow,
			Title:         title,
			Path:          showPath,
			LastScannedAt: time.Now(),
			Metadata:      blob,
		}
		if err := s.catalogService.UpsertMediaItem(ctx, item); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", showPath, err))
			continue
		}
		if prior == nil {
			summary.Added++
		} else {
			summary.Updated++
		}

		var seriesID string
		if blob != nil {
			var tvMeta metadata.TVMetadata
			if err := json.Unmarshal([]byte(*blob), &tvMeta); err == nil {
				seriesID = tvMeta.SeriesID
			}
		}

		err = s.scanSeasons(ctx, opts, summary, item, seriesID, &authFailed, fetchEnabled && episodesEnabled, seenEpisodes)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", showPath, err))
		}
	}

	if err := s.gcMediaItems(ctx, models.MediaKindTVShow, root, seenShows); err != nil {
		return nil, err
	}
	if err := s.gcEpisodes(ctx, root, seenEpisodes); err != nil {
		return nil, err
	}

	log.Info("tv scan finished", logger.Data{"added": summary.Added, "updated": summary.Updated, "errors": len(summary.Errors)})
	opts.emit(ProgressEvent{Stage: StageComplete, Kind: models.ScanKindTV})
	return summary, nil
}

func (s *Scanner) scanSeasons(ctx context.Context, opts Options, summary *Summary, show *models.MediaItem, seriesID string, authFailed *bool, episodesEnabled bool, seen map[string]bool) error {
	showDir := filepath.Join(s.config.TVRoot, show.Path)
	seasons, err := os.ReadDir(showDir)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, seasonEntry := range seasons {
		if !seasonEntry.IsDir() {
			continue
		}
		season, ok := mediafile.ParseSeasonFolder(seasonEntry.Name())
		if !ok {
			continue
		}

		seasonDir := filepath.Join(showDir, seasonEntry.Name())
		files, err := os.ReadDir(seasonDir)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", seasonDir, err))
			continue
		}

		for _, fileEntry := range files {
			if fileEntry.IsDir() || !mediafile.IsVideoFile(fileEntry.Name()) {
				continue
			}

			relPath := filepath.Join(show.Path, seasonEntry.Name(), fileEntry.Name())
			seen[relPath] = true

			info, err := fileEntry.Info()
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
				continue
			}

			priorEp, err := s.catalogService.RetrieveEpisodeByPath(ctx, relPath)
			if err != nil && !isNotFound(err) {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
				continue
			}

			episodeNumber := mediafile.ParseEpisodeNumber(fileEntry.Name())
			episodeTitle := mediafile.StripExtension(fileEntry.Name())

			var blob *string
			switch {
			case priorEp != nil && priorEp.Metadata != nil:
				blob = priorEp.Metadata
				opts.emit(ProgressEvent{Stage: StageCached, Kind: models.ScanKindTV, Path: relPath, Title: episodeTitle})
			case episodesEnabled && !*authFailed && seriesID != "":
				opts.emit(ProgressEvent{Stage: StageFetchingMetadata, Kind: models.ScanKindTV, Path: relPath, Title: episodeTitle})
				result, err := s.tv.Episode(ctx, seriesID, season, episodeNumber)
				switch {
				case errors.Is(err, metadata.ErrAuthFailed):
					*authFailed = true
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
					opts.emit(ProgressEvent{Stage: StageSkipped, Kind: models.ScanKindTV, Path: relPath, Title: episodeTitle})
				case err != nil:
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
					opts.emit(ProgressEvent{Stage: StageNoMetadata, Kind: models.ScanKindTV, Path: relPath, Title: episodeTitle})
				case result == nil:
					opts.emit(ProgressEvent{Stage: StageNoMetadata, Kind: models.ScanKindTV, Path: relPath, Title: episodeTitle})
				default:
					blob, err = metadata.Encode(result)
					if err != nil {
						summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
					}
					opts.emit(ProgressEvent{Stage: StageMetadataFetched, Kind: models.ScanKindTV, Path: relPath, Title: episodeTitle})
				}
			default:
				opts.emit(ProgressEvent{Stage: StageSkipped, Kind: models.ScanKindTV, Path: relPath, Title: episodeTitle})
			}

			ep := &models.TVEpisode{
				MediaItemID:   show.ID,
				SeasonNumber:  season,
				EpisodeNumber: episodeNumber,
				Title:         episodeTitle,
				Filepath:      relPath,
				FileSize:      info.Size(),
				LastScannedAt: time.Now(),
				Metadata:      blob,
			}
			if err := s.catalogService.UpsertEpisode(ctx, ep); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", relPath, err))
			}
		}
	}

	return nil
}

// gcMediaItems removes catalog rows of a kind whose paths no longer exist on
// disk. An entry missing from the seen set may just have hit a recoverable
// per-entry error this pass, so deletion additionally requires the backing
// path to be gone. Deleting a show cascades to its episodes.
func (s *Scanner) gcMediaItems(ctx context.Context, kind, root string, seen map[string]bool) error {
	items, err := s.catalogService.ListMediaItems(ctx, catalog.ListMediaItemsOptions{Kind: &kind})
	if err != nil {
		return err
	}
	for _, item := range items {
		if seen[item.Path] {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, item.Path)); !os.IsNotExist(err) {
			continue
		}
		if err := s.catalogService.DeleteMediaItem(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

// gcEpisodes removes episode rows for files that disappeared from surviving
// shows. Unseen rows whose files still exist are kept; their walk may have
// failed partway this pass.
func (s *Scanner) gcEpisodes(ctx context.Context, root string, seen map[string]bool) error {
	episodes, err := s.catalogService.ListEpisodes(ctx, catalog.ListEpisodesOptions{})
	if err != nil {
		return err
	}
	for _, ep := range episodes {
		if seen[ep.Filepath] {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, ep.Filepath)); !os.IsNotExist(err) {
			continue
		}
		if err := s.catalogService.DeleteEpisode(ctx, ep.ID); err != nil {
			return err
		}
	}
	return nil
}
