package settings

import (
	"context"
	"database/sql"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfdmedia/shelfd/pkg/migrations"
	"github.com/shelfdmedia/shelfd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	ctx := logger.New().WithContext(context.Background())
	return NewService(db), ctx
}

func TestGetUnsetKey(t *testing.T) {
	svc, ctx := newTestService(t)

	value, err := svc.Get(ctx, models.SettingTVMetadataEnabled)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestSetAndGet(t *testing.T) {
	svc, ctx := newTestService(t)

	require.NoError(t, svc.Set(ctx, models.SettingTVMetadataEnabled, "false"))

	value, err := svc.Get(ctx, models.SettingTVMetadataEnabled)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "false", *value)

	// Overwrite.
	require.NoError(t, svc.Set(ctx, models.SettingTVMetadataEnabled, "true"))

	value, err = svc.Get(ctx, models.SettingTVMetadataEnabled)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "true", *value)
}

func TestGetBool(t *testing.T) {
	svc, ctx := newTestService(t)

	// Unset falls back.
	enabled, err := svc.GetBool(ctx, models.SettingMovieMetadataEnabled, true)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, svc.Set(ctx, models.SettingMovieMetadataEnabled, "false"))

	enabled, err = svc.GetBool(ctx, models.SettingMovieMetadataEnabled, true)
	require.NoError(t, err)
	assert.False(t, enabled)

	// Unparseable falls back.
	require.NoError(t, svc.Set(ctx, models.SettingMovieMetadataEnabled, "banana"))

	enabled, err = svc.GetBool(ctx, models.SettingMovieMetadataEnabled, true)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestDelete(t *testing.T) {
	svc, ctx := newTestService(t)

	require.NoError(t, svc.Set(ctx, models.SettingSaveImagesLocally, "true"))
	require.NoError(t, svc.Delete(ctx, models.SettingSaveImagesLocally))

	value, err := svc.Get(ctx, models.SettingSaveImagesLocally)
	require.NoError(t, err)
	assert.Nil(t, value)

	// Deleting an unset key is a no-op.
	require.NoError(t, svc.Delete(ctx, models.SettingSaveImagesLocally))
}
