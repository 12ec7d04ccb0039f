package work

import (
	"testing"
	"time"

	"github.com/L4er70/ContactBook/server/models"
	"github.com/stretchr/testify/assert"
)

func TestEnqueueIn(t *testing.T) {
	models.InitializeTestDb()

	workerPool, err := newWorkerPool(MAX_CONCURRENCY, testBackoffs)
	assert.Nil(t, err)

	err = workerPool.enqueueIn(0, JobParams{
		Name:    "suits",
		Handler: "donna",
		Args: map[string]interface{}{
			"first_name": "mike",
			"last_name":  "ross",
		},
	})
	assert.Nil(t, err)

	// Make sure the correct job is created & scheduled to be run
	job, err := models.FirstScheduledJobToBeQueued()
	assert.Nil(t, err)
	assert.Equal(t, "suits", job.Name, "The job name should match the expected job name")
	assert.Contains(t, job.Args, "mike", "Should contain the correct arg values")
	assert.Equal(t, models.SCHEDULED_JOB, job.JobStatus.Name, "The job should be in scheduled queue")
}

func TestEnqueueRequiresNameAndHandler(t *testing.T) {
	models.InitializeTestDb()

	workerPool, err := newWorkerPool(MAX_CONCURRENCY, testBackoffs)
	assert.Nil(t, err)

	assert.NotNil(t, workerPool.enqueue(JobParams{Name: " ", Handler: "donna"}))
	assert.NotNil(t, workerPool.enqueue(JobParams{Name: "suits"}))
	assert.ErrorIs(t, func() error {
		assert.Nil(t, workerPool.enqueue(JobParams{Name: "suits", Handler: "donna"}))
		return workerPool.enqueue(JobParams{Name: "suits", Handler: "donna"})
	}(), models.ErrDuplicateJob)
}

func TestRegisterHandlerAfterStart(t *testing.T) {
	models.InitializeTestDb()

	workerPool, err := newWorkerPool(MAX_CONCURRENCY, testBackoffs)
	assert.Nil(t, err)

	workerPool.start()
	defer workerPool.stop()

	err = workerPool.registerHandler("late", func(map[string]interface{}) error { return nil })
	assert.NotNil(t, err)
}

func TestWorkerBackoff(t *testing.T) {
	w := newWorker([]time.Duration{0, time.Second, time.Minute})

	assert.Equal(t, DefaultTickerDuration, w.backoff(0))
	assert.Equal(t, time.Second, w.backoff(1))
	assert.Equal(t, time.Minute, w.backoff(2))
	assert.Equal(t, time.Minute, w.backoff(10))
}
