package mediafile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeasonFolder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		season int
		ok     bool
	}{
		{"Season 1", 1, true},
		{"season02", 2, true},
		{"SEASON 10", 10, true},
		{"Specials", 0, false},
		{"extras", 0, false},
	}

	for _, test := range tests {
		season, ok := ParseSeasonFolder(test.name)
		assert.Equal(t, test.ok, ok, test.name)
		assert.Equal(t, test.season, season, test.name)
	}
}

func TestParseEpisodeNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		episode int
	}{
		{"S01E04 - The One With the Cat.mkv", 4},
		{"Episode 12.mp4", 12},
		{"e7.avi", 7},
		{"intro.mkv", 0},
	}

	for _, test := range tests {
		assert.Equal(t, test.episode, ParseEpisodeNumber(test.name), test.name)
	}
}

func TestIsVideoFile(t *testing.T) {
	t.Parallel()

	assert.True(t, IsVideoFile("movie.MKV"))
	assert.True(t, IsVideoFile("movie.mp4"))
	assert.False(t, IsVideoFile("notes.txt"))
	assert.False(t, IsVideoFile("cover.jpg"))
}

func TestClassifyMovieEntry(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "Inception (2010).mkv"), 100)
	writeFile(t, filepath.Join(root, "The Matrix (1999)", "matrix-sample.mp4"), 10)
	writeFile(t, filepath.Join(root, "The Matrix (1999)", "matrix-full.mkv"), 500)
	writeFile(t, filepath.Join(root, "The Matrix (1999)", "notes.txt"), 5)
	writeFile(t, filepath.Join(root, "Empty Folder", "cover.jpg"), 1)
	writeFile(t, filepath.Join(root, "readme.txt"), 1)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	results := map[string]*MovieEntry{}
	for _, entry := range entries {
		movie, err := ClassifyMovieEntry(root, entry)
		require.NoError(t, err)
		if movie != nil {
			results[movie.Title] = movie
		}
	}

	require.Len(t, results, 2)

	bare := results["Inception (2010)"]
	require.NotNil(t, bare)
	assert.Equal(t, filepath.Join(root, "Inception (2010).mkv"), bare.Filepath)
	assert.EqualValues(t, 100, bare.FileSize)

	container := results["The Matrix (1999)"]
	require.NotNil(t, container)
	assert.Equal(t, filepath.Join(root, "The Matrix (1999)", "matrix-full.mkv"), container.Filepath)
	assert.EqualValues(t, 500, container.FileSize)
}

func TestClassifyBookDirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "standalone", "book.epub"), 10)
	writeFile(t, filepath.Join(root, "series", "Book One", "one.epub"), 10)
	writeFile(t, filepath.Join(root, "junk", "cover.jpg"), 10)

	kind, err := ClassifyBookDirectory(filepath.Join(root, "standalone"), EbookExtensions)
	require.NoError(t, err)
	assert.Equal(t, BookDirStandalone, kind)

	kind, err = ClassifyBookDirectory(filepath.Join(root, "series"), EbookExtensions)
	require.NoError(t, err)
	assert.Equal(t, BookDirSeries, kind)

	kind, err = ClassifyBookDirectory(filepath.Join(root, "junk"), EbookExtensions)
	require.NoError(t, err)
	assert.Equal(t, BookDirIgnore, kind)
}

func TestSumBookFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	dir := filepath.Join(root, "The Final Empire")
	writeFile(t, filepath.Join(dir, "part1.m4b"), 100)
	writeFile(t, filepath.Join(dir, "part2.m4b"), 200)
	writeFile(t, filepath.Join(dir, "cover.jpg"), 50)

	count, total, err := SumBookFiles(dir, AudiobookExtensions)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.EqualValues(t, 300, total)

	count, total, err = SumBookFiles(dir, EbookExtensions)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.EqualValues(t, 0, total)
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}
