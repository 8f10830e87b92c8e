package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shelfdmedia/shelfd/pkg/jobs"
	"github.com/shelfdmedia/shelfd/pkg/models"
	"github.com/shelfdmedia/shelfd/pkg/scanner"
)

// ProcessScanJob runs one scan job and stores the per-kind summaries on the
// job row. Progress events are logged as they happen so a tail of the server
// log shows what the scan is doing.
func (w *Worker) ProcessScanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*models.JobScanData)
	if !ok {
		return errors.New("scan job has no scan data")
	}

	log.Info("scan started", logger.Data{"kind": data.Kind, "skip_metadata": data.SkipMetadata})

	report, err := w.scanner.Scan(ctx, data.Kind, scanner.Options{
		SkipMetadata: data.SkipMetadata,
		Progress: func(e scanner.ProgressEvent) {
			log.Debug("scan progress", logger.Data{"stage": e.Stage, "kind": e.Kind, "path": e.Path})
		},
	})
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(report)
	if err != nil {
		return errors.WithStack(err)
	}
	result := string(encoded)
	job.Result = &result

	err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"result"},
	})
	if err != nil {
		return err
	}

	log.Info("scan finished", logger.Data{"kind": data.Kind})
	return nil
}
