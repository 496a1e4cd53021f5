package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"pos-backend/internal/shared"
	"pos-backend/pkg/logger"
)

// Scheduler enqueues the periodic maintenance tasks consumed by the worker.
type Scheduler struct {
	scheduler     *asynq.Scheduler
	reconcileSpec string
}

// NewScheduler builds a scheduler evaluating cron specs in UTC.
// reconcileSpec drives the full stock snapshot refresh.
func NewScheduler(redis asynq.RedisClientOpt, reconcileSpec string) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler:     scheduler,
		reconcileSpec: reconcileSpec,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerStockReconcileJob()
}

// ================================================
// STOCK RECONCILE
// ================================================
func (s *Scheduler) registerStockReconcileJob() error {
	task := asynq.NewTask(shared.TypeStockReconcile, nil)

	_, err := s.scheduler.Register(
		s.reconcileSpec,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
		// A slow run must not pile up behind itself.
		asynq.Unique(time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register StockReconcile job", err)
		return err
	}

	logger.Info("✓ Registered StockReconcile", map[string]interface{}{"cron": s.reconcileSpec})
	return nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
