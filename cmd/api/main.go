package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/shelfdmedia/shelfd/pkg/config"
	"github.com/shelfdmedia/shelfd/pkg/database"
	"github.com/shelfdmedia/shelfd/pkg/jobs"
	"github.com/shelfdmedia/shelfd/pkg/migrations"
	"github.com/shelfdmedia/shelfd/pkg/models"
	"github.com/shelfdmedia/shelfd/pkg/server"
	"github.com/shelfdmedia/shelfd/pkg/version"
	"github.com/shelfdmedia/shelfd/pkg/worker"
	"github.com/uptrace/bun"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting shelfd", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	if err := os.MkdirAll(cfg.ImageCacheDir, 0o755); err != nil {
		log.Err(err).Fatal("image cache directory error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	if err := enqueueInitialScan(log.WithContext(ctx), db); err != nil {
		log.Err(err).Error("initial scan enqueue error")
	}

	wrkr := worker.New(cfg, db)

	srv, err := server.New(cfg, db)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		actualPort := listener.Addr().(*net.TCPAddr).Port
		log.Info("server started", logger.Data{"port": actualPort})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	wrkr.Start()
	log.Info("worker started")

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}

// enqueueInitialScan queues a metadata-free scan of every kind on first boot
// so the catalog fills quickly; metadata arrives on the next full scan.
func enqueueInitialScan(ctx context.Context, db *bun.DB) error {
	jobService := jobs.NewService(db)

	_, total, err := jobService.ListJobsWithTotal(ctx, jobs.ListJobsOptions{})
	if err != nil {
		return errors.WithStack(err)
	}
	if total > 0 {
		return nil
	}

	job := &models.Job{
		Type:   models.JobTypeScan,
		Status: models.JobStatusPending,
		DataParsed: &models.JobScanData{
			Kind:         models.ScanKindAll,
			SkipMetadata: true,
		},
	}

	return errors.WithStack(jobService.CreateJob(ctx, job))
}
