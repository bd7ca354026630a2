package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"xp-ledger/logger"
)

// MaintenanceJob is a periodic background task. Jobs with Every <= 0 are not scheduled.
type MaintenanceJob struct {
	Name  string
	Every time.Duration
	Run   func(context.Context) error
}

// StartMaintenanceScheduler starts a gocron scheduler running jobs until ctx is done.
// Each job runs in singleton mode so a slow run is never overlapped by the next tick.
func StartMaintenanceScheduler(ctx context.Context, log *logger.Logger, jobs ...MaintenanceJob) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	for _, job := range jobs {
		if job.Every <= 0 {
			log.Info("maintenance job disabled", "job", job.Name)
			continue
		}
		job := job
		_, err := sched.NewJob(
			gocron.DurationJob(job.Every),
			gocron.NewTask(func() {
				started := time.Now()
				if err := job.Run(ctx); err != nil {
					log.Error("maintenance job failed", "job", job.Name, "error", err)
					return
				}
				log.Debug("maintenance job done", "job", job.Name, "took", time.Since(started))
			}),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
		log.Info("maintenance job scheduled", "job", job.Name, "every", job.Every)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Warn("scheduler shutdown", "error", err)
		}
	}()
	return sched, nil
}
