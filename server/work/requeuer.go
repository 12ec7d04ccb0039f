package work

import (
	"errors"
	"fmt"
	"time"

	"github.com/L4er70/ContactBook/colors"
	"github.com/L4er70/ContactBook/server/models"
	"gorm.io/gorm"
)

// STUCK_JOB_MINUTES is how long a job may stay in-progress before it is requeued
const STUCK_JOB_MINUTES = 10

var supportedQueues = map[string]bool{models.IN_PROGRESS_JOB: true, models.SCHEDULED_JOB: true}

// requeuer moves jobs back to 'enqueued' from either the 'in-progress'
// queue (jobs that got stuck) or the 'scheduled' queue (jobs now due)
type requeuer struct {
	fromQueue    string
	stopChan     chan struct{}
	sleepBackoff time.Duration
}

func newRequeuer(fromQueue string, sleepBackoff time.Duration) (*requeuer, error) {
	if !supportedQueues[fromQueue] {
		return nil, fmt.Errorf("%v is not a supported queue, must be in %v", fromQueue, supportedQueues)
	}

	if sleepBackoff < DefaultTickerDuration {
		sleepBackoff = DefaultTickerDuration
	}

	return &requeuer{
		fromQueue:    fromQueue,
		stopChan:     make(chan struct{}),
		sleepBackoff: sleepBackoff,
	}, nil
}

func (r *requeuer) start() {
	go r.loop()
}

func (r *requeuer) stop() {
	r.stopChan <- struct{}{}
}

func (r *requeuer) loop() {
	var job *models.Job
	var err error

	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	r.logInfof("started")
	for {
		select {
		case <-r.stopChan:
			r.logInfof("stopped")
			return
		case <-rateLimiter.C:
			job, err = r.nextJob()

			if errors.Is(err, gorm.ErrRecordNotFound) {
				rateLimiter.Reset(r.sleepBackoff)
				continue
			}

			if err != nil {
				r.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			r.logInfof("fetched job with id=%v, name=%v, claimed=%v", job.ID, job.Name, job.Claimed)

			r.requeue(job)
			rateLimiter.Reset(DefaultTickerDuration)
		}
	}
}

func (r *requeuer) nextJob() (*models.Job, error) {
	if r.fromQueue == models.IN_PROGRESS_JOB {
		return models.LastJobLastUpdated(STUCK_JOB_MINUTES, models.IN_PROGRESS_JOB)
	}
	return models.FirstScheduledJobToBeQueued()
}

func (r *requeuer) requeue(job *models.Job) {
	jobStatus, err := models.FindJobStatus(models.ENQUEUED_JOB)
	if err != nil {
		r.logError(err)
		return
	}

	err = job.Update(map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
		"enqueue_at":    time.Now(),
	})
	if err != nil {
		r.logError(err)
		return
	}

	r.logInfof("job with id=%v requeued", job.ID)
}

func (r *requeuer) logInfof(template string, args ...interface{}) {
	prefix := colors.Yellow(fmt.Sprintf("[%s job requeuer] ", r.fromQueue))
	logg.Infof(prefix+template, args...)
}

func (r *requeuer) logError(err error) {
	prefix := colors.Red(fmt.Sprintf("[%s job requeuer] ", r.fromQueue))
	logg.Errorf("%s%v", prefix, err)
}
