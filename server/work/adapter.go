package work

import (
	"errors"
	"fmt"
	"time"

	"github.com/L4er70/ContactBook/server/cron"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/go-co-op/gocron"
)

// MAX_CONCURRENCY is kept at 1 since sqlite allows a single writer
const MAX_CONCURRENCY = 1

type WorkerPoolAdapter struct {
	cronScheduler *gocron.Scheduler
	pool          *workerPool
}

func NewWorkerAdapter(timeZone string) (*WorkerPoolAdapter, error) {
	return newWorkerAdapter(timeZone, DefaultSleepBackoffs)
}

func newWorkerAdapter(timeZone string, sleepBackoffs []time.Duration) (*WorkerPoolAdapter, error) {
	cronScheduler, err := cron.NewCronScheduler(timeZone)
	if err != nil {
		return nil, err
	}

	pool, err := newWorkerPool(MAX_CONCURRENCY, sleepBackoffs)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolAdapter{cronScheduler: cronScheduler, pool: pool}, nil
}

// Start starts the cron scheduler & worker pool
func (adapter *WorkerPoolAdapter) Start() {
	logg.Info("Starting cron scheduler & worker pool")
	adapter.cronScheduler.StartAsync()
	adapter.pool.start()
}

// Stop stops the cron scheduler & worker pool
func (adapter *WorkerPoolAdapter) Stop() {
	logg.Info("Stopping cron scheduler & worker pool")
	adapter.cronScheduler.Stop()
	adapter.pool.stop()
}

// Register binds a name to a handler.
func (adapter *WorkerPoolAdapter) Register(name string, handler Handler) error {
	return adapter.pool.registerHandler(name, handler)
}

// Perform sends a new job to the queue, now - to be executed as soon as a worker is available
func (adapter *WorkerPoolAdapter) Perform(job JobParams) error {
	logg.Infof("Enqueuing job: %v", job.Name)

	err := adapter.pool.enqueue(job)
	if errors.Is(err, models.ErrDuplicateJob) {
		logg.Warnf("Duplicate job already in queue for: %v", job.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("error enqueuing job %v: %w", job.Name, err)
	}

	return nil
}

// PerformIn schedules a job to be sent to the queue in 'seconds' seconds
func (adapter *WorkerPoolAdapter) PerformIn(seconds int64, job JobParams) error {
	logg.Infof("Scheduling job: %v in %vs", job.Name, seconds)

	err := adapter.pool.enqueueIn(seconds, job)
	if errors.Is(err, models.ErrDuplicateJob) {
		logg.Warnf("Duplicate job already in queue for: %v", job.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("error scheduling job %v: %w", job.Name, err)
	}

	return nil
}

// PeriodicallyPerform adds a job to the queue (to be executed)
// periodically, based on the 'cronExpression' expression provided
func (adapter *WorkerPoolAdapter) PeriodicallyPerform(cronExpression string, job JobParams) error {
	_, err := adapter.cronScheduler.Cron(cronExpression).Tag(job.Name).
		Do(
			func(job JobParams) {
				err := adapter.Perform(job)
				if err != nil {
					logg.Error(err)
				}
			},
			job,
		)
	if err != nil {
		return fmt.Errorf("error scheduling periodic job %v: %w", job.Name, err)
	}

	return nil
}
