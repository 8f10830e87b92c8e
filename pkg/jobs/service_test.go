package jobs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shelfdmedia/shelfd/pkg/migrations"
	"github.com/shelfdmedia/shelfd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestHasActiveJobByType_NoJobs(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	hasActive, err := svc.HasActiveJobByType(ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.False(t, hasActive)
}

func TestHasActiveJobByType_PendingJob(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{Kind: models.ScanKindAll},
	}
	err := svc.CreateJob(ctx, job)
	require.NoError(t, err)

	hasActive, err := svc.HasActiveJobByType(ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.True(t, hasActive)
}

func TestHasActiveJobByType_InProgressJob(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobScanData{Kind: models.ScanKindBooks},
	}
	err := svc.CreateJob(ctx, job)
	require.NoError(t, err)

	hasActive, err := svc.HasActiveJobByType(ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.True(t, hasActive)
}

func TestHasActiveJobByType_CompletedJob(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusCompleted,
		DataParsed: &models.JobScanData{Kind: models.ScanKindAll},
	}
	err := svc.CreateJob(ctx, job)
	require.NoError(t, err)

	hasActive, err := svc.HasActiveJobByType(ctx, models.JobTypeScan)
	require.NoError(t, err)
	assert.False(t, hasActive)
}

func TestCreateAndRetrieveJob(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{Kind: models.ScanKindTV, SkipMetadata: true},
	}
	err := svc.CreateJob(ctx, job)
	require.NoError(t, err)
	require.NotZero(t, job.ID)

	retrieved, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)

	data, ok := retrieved.DataParsed.(*models.JobScanData)
	require.True(t, ok)
	assert.Equal(t, models.ScanKindTV, data.Kind)
	assert.True(t, data.SkipMetadata)
}

func TestUpdateJobResult(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{Kind: models.ScanKindMovies},
	}
	err := svc.CreateJob(ctx, job)
	require.NoError(t, err)

	result := `{"movies":{"added":2,"updated":0}}`
	job.Status = models.JobStatusCompleted
	job.Result = &result
	err = svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status", "result"}})
	require.NoError(t, err)

	retrieved, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, retrieved.Status)
	require.NotNil(t, retrieved.Result)
	assert.Equal(t, result, *retrieved.Result)
}
