package scanner

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfdmedia/shelfd/pkg/catalog"
	"github.com/shelfdmedia/shelfd/pkg/config"
	"github.com/shelfdmedia/shelfd/pkg/metadata"
	"github.com/shelfdmedia/shelfd/pkg/migrations"
	"github.com/shelfdmedia/shelfd/pkg/settings"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type fakeMovieProvider struct {
	mu     sync.Mutex
	calls  int
	result *metadata.MovieMetadata
	err    error
}

func (f *fakeMovieProvider) Search(ctx context.Context, title, year string) (*metadata.MovieMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTVProvider struct {
	mu           sync.Mutex
	searchCalls  int
	episodeCalls int
	result       *metadata.TVMetadata
	episode      *metadata.EpisodeMetadata
	searchErr    error
	episodeErr   error
}

func (f *fakeTVProvider) Search(ctx context.Context, title, year string) (*metadata.TVMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.result, nil
}

func (f *fakeTVProvider) Episode(ctx context.Context, seriesID string, season, episode int) (*metadata.EpisodeMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodeCalls++
	if f.episodeErr != nil {
		return nil, f.episodeErr
	}
	return f.episode, nil
}

type fakeBookProvider struct {
	mu         sync.Mutex
	calls      int
	candidates []*metadata.BookCandidate
	err        error
}

func (f *fakeBookProvider) Search(ctx context.Context, title, authorHint string) ([]*metadata.BookCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

type testEnv struct {
	ctx      context.Context
	scanner  *Scanner
	movies   *fakeMovieProvider
	tv       *fakeTVProvider
	books    *fakeBookProvider
	catalog  *catalog.Service
	settings *settings.Service
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// A single connection keeps the in-memory database and its pragmas on
	// the same handle for the whole test.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.ExecContext(context.Background(), "PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	db := newTestDB(t)
	s := New(cfg, db)

	env := &testEnv{
		ctx:      logger.New().WithContext(context.Background()),
		scanner:  s,
		movies:   &fakeMovieProvider{},
		tv:       &fakeTVProvider{},
		books:    &fakeBookProvider{},
		catalog:  catalog.NewService(db),
		settings: settings.NewService(db),
	}
	s.movies = env.movies
	s.tv = env.tv
	s.books = env.books

	return env
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0o644))
}
