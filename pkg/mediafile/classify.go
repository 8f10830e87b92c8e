package mediafile

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shelfdmedia/shelfd/pkg/models"
)

// Extension sets are authoritative for classification. Comparisons are
// case-insensitive and include the leading dot.
var (
	VideoExtensions = map[string]bool{
		".mkv": true, ".mp4": true, ".avi": true, ".m4v": true,
		".mov": true, ".wmv": true, ".ts": true, ".webm": true,
	}

	AudiobookExtensions = map[string]bool{
		".m4b": true, ".m4a": true, ".mp3": true, ".flac": true,
		".ogg": true, ".aac": true,
	}

	EbookExtensions = map[string]bool{
		".epub": true, ".pdf": true, ".mobi": true, ".azw3": true,
		".cbz": true, ".txt": true,
	}
)

var seasonPattern = regexp.MustCompile(`(?i)season\s*(\d+)`)
var episodePattern = regexp.MustCompile(`(?i)(?:e|episode\s*)(\d+)`)

// BookKindExtensions returns the extension set for a book kind.
func BookKindExtensions(kind string) map[string]bool {
	if kind == models.BookKindAudiobook {
		return AudiobookExtensions
	}
	return EbookExtensions
}

func IsVideoFile(name string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(name))]
}

func matchesExtensions(name string, exts map[string]bool) bool {
	return exts[strings.ToLower(filepath.Ext(name))]
}

// ParseSeasonFolder reports whether the directory name looks like a season
// folder ("Season 1", "season02", ...) and extracts the season number from
// the first digit run.
func ParseSeasonFolder(name string) (int, bool) {
	m := seasonPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return season, true
}

// ParseEpisodeNumber extracts an episode number from a filename ("E04",
// "Episode 12"). Files without a recognizable marker default to 0; two such
// files in one season collide on episode number, which is accepted.
func ParseEpisodeNumber(name string) int {
	m := episodePattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	episode, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return episode
}

// StripExtension removes the final extension from a filename for use as a
// title.
func StripExtension(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// MovieEntry is the classification result for a top-level movie entry.
type MovieEntry struct {
	// Title is the display title: the directory name for containers, the
	// filename minus extension for bare files.
	Title string
	// Filepath is the representative video file's absolute path.
	Filepath string
	// FileSize is the representative file's size in bytes.
	FileSize int64
}

// ClassifyMovieEntry inspects one top-level entry of the movie root. A bare
// video file represents itself. A directory is a container when it holds at
// least one video file; the largest video by byte size is its representative
// and the directory name is the title. Anything else returns nil.
func ClassifyMovieEntry(root string, entry os.DirEntry) (*MovieEntry, error) {
	fullPath := filepath.Join(root, entry.Name())

	if !entry.IsDir() {
		if !IsVideoFile(entry.Name()) {
			return nil, nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return &MovieEntry{
			Title:    StripExtension(entry.Name()),
			Filepath: fullPath,
			FileSize: info.Size(),
		}, nil
	}

	children, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var largest *MovieEntry
	for _, child := range children {
		if child.IsDir() || !IsVideoFile(child.Name()) {
			continue
		}
		info, err := child.Info()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if largest == nil || info.Size() > largest.FileSize {
			largest = &MovieEntry{
				Title:    entry.Name(),
				Filepath: filepath.Join(fullPath, child.Name()),
				FileSize: info.Size(),
			}
		}
	}

	return largest, nil
}

// BookDirKind classifies a directory under an author folder.
type BookDirKind int

const (
	// BookDirIgnore means the directory holds neither matching files nor
	// subdirectories.
	BookDirIgnore BookDirKind = iota
	// BookDirStandalone means the directory holds matching files directly
	// and no subdirectories: a single book.
	BookDirStandalone
	// BookDirSeries means the directory holds subdirectories, each of which
	// is scanned as a book belonging to the series.
	BookDirSeries
)

// ClassifyBookDirectory inspects the immediate contents of a directory,
// non-recursively. Presence of subdirectories wins over loose files.
func ClassifyBookDirectory(path string, exts map[string]bool) (BookDirKind, error) {
	children, err := os.ReadDir(path)
	if err != nil {
		return BookDirIgnore, errors.WithStack(err)
	}

	hasFiles := false
	for _, child := range children {
		if child.IsDir() {
			return BookDirSeries, nil
		}
		if matchesExtensions(child.Name(), exts) {
			hasFiles = true
		}
	}

	if hasFiles {
		return BookDirStandalone, nil
	}
	return BookDirIgnore, nil
}

// SumBookFiles totals the sizes of the files in a book directory that match
// the kind's extension set. A zero count means the directory holds no book
// of this kind and should be skipped.
func SumBookFiles(path string, exts map[string]bool) (count int, total int64, err error) {
	children, err := os.ReadDir(path)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}

	for _, child := range children {
		if child.IsDir() || !matchesExtensions(child.Name(), exts) {
			continue
		}
		info, err := child.Info()
		if err != nil {
			return 0, 0, errors.WithStack(err)
		}
		count++
		total += info.Size()
	}

	return count, total, nil
}
