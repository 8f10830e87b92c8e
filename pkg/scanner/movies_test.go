package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shelfdmedia/shelfd/pkg/catalog"
	"github.com/shelfdmedia/shelfd/pkg/config"
	"github.com/shelfdmedia/shelfd/pkg/metadata"
	"github.com/shelfdmedia/shelfd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMovies_BareFilesAndContainers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "The.Matrix.1999.1080p.BluRay.mkv"), 100)
	writeFile(t, filepath.Join(root, "Inception (2010)", "Inception.1080p.mkv"), 100)
	writeFile(t, filepath.Join(root, "Inception (2010)", "Inception.2160p.mkv"), 500)
	writeFile(t, filepath.Join(root, "notes.txt"), 10)

	env := newTestEnv(t, &config.Config{MovieRoot: root})
	env.movies.result = &metadata.MovieMetadata{Source: "tmdb", ExternalID: 603, Title: "The Matrix"}

	summary, err := env.scanner.ScanMovies(env.ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Added)
	assert.Empty(t, summary.Errors)

	matrix, err := env.catalog.RetrieveMediaItem(env.ctx, catalog.RetrieveMediaItemOptions{
		Kind: pointerutil.String(models.MediaKindMovie),
		Path: pointerutil.String("The.Matrix.1999.1080p.BluRay.mkv"),
	})
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", matrix.Title)
	require.NotNil(t, matrix.Metadata)

	inception, err := env.catalog.RetrieveMediaItem(env.ctx, catalog.RetrieveMediaItemOptions{
		Kind: pointerutil.String(models.MediaKindMovie),
		Path: pointerutil.String("Inception (2010)"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Inception", inception.Title)
	// Largest video in the container wins.
	require.NotNil(t, inception.FileSize)
	assert.Equal(t, int64(500), *inception.FileSize)
}

func TestScanMovies_RemovedEntriesAreCollected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Heat.1995.mkv"), 100)
	writeFile(t, filepath.Join(root, "Ronin.1998.mkv"), 100)

	env := newTestEnv(t, &config.Config{MovieRoot: root})

	_, err := env.scanner.ScanMovies(env.ctx, Options{SkipMetadata: true})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "Ronin.1998.mkv")))

	_, err = env.scanner.ScanMovies(env.ctx, Options{SkipMetadata: true})
	require.NoError(t, err)

	items, err := env.catalog.ListMediaItems(env.ctx, catalog.ListMediaItemsOptions{
		Kind: pointerutil.String(models.MediaKindMovie),
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Heat.1995.mkv", items[0].Path)
}

func TestScanMovies_ProviderFailureKeepsTheItem(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Alien.1979.mkv"), 100)

	env := newTestEnv(t, &config.Config{MovieRoot: root})
	env.movies.err = assert.AnError

	summary, err := env.scanner.ScanMovies(env.ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	require.Len(t, summary.Errors, 1)

	item, err := env.catalog.RetrieveMediaItem(env.ctx, catalog.RetrieveMediaItemOptions{
		Kind: pointerutil.String(models.MediaKindMovie),
		Path: pointerutil.String("Alien.1979.mkv"),
	})
	require.NoError(t, err)
	assert.Nil(t, item.Metadata)
}

func TestScanMovies_MissingRoot(t *testing.T) {
	env := newTestEnv(t, &config.Config{MovieRoot: filepath.Join(t.TempDir(), "nope")})

	summary, err := env.scanner.ScanMovies(env.ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Summary{}, summary)
}

func TestScanAll_RunsEveryKind(t *testing.T) {
	tvRoot := t.TempDir()
	movieRoot := t.TempDir()
	bookRoot := t.TempDir()
	writeFile(t, filepath.Join(tvRoot, "Some Show", "Season 1", "E01.mkv"), 10)
	writeFile(t, filepath.Join(movieRoot, "Heat.1995.mkv"), 10)
	writeFile(t, filepath.Join(bookRoot, "ebooks", "Dan Simmons", "Hyperion", "hyperion.epub"), 10)

	env := newTestEnv(t, &config.Config{TVRoot: tvRoot, MovieRoot: movieRoot, BookRoot: bookRoot})

	report, err := env.scanner.Scan(env.ctx, models.ScanKindAll, Options{SkipMetadata: true})
	require.NoError(t, err)
	require.NotNil(t, report.TV)
	require.NotNil(t, report.Movies)
	require.NotNil(t, report.Books)
	assert.Equal(t, 1, report.TV.Added)
	assert.Equal(t, 1, report.Movies.Added)
	assert.Equal(t, 1, report.Books.Added)
}
