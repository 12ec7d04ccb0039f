package work

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/L4er70/ContactBook/server/models"
	"github.com/stretchr/testify/assert"
)

var testBackoffs = []time.Duration{0, 20 * time.Millisecond}

type safeCounter struct {
	mu    sync.Mutex
	calls []map[string]interface{}
}

func (c *safeCounter) handle(args map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, args)
	return nil
}

func (c *safeCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func TestPerform(t *testing.T) {
	models.InitializeTestDb()

	adapter, err := newWorkerAdapter("UTC", testBackoffs)
	assert.Nil(t, err)

	counter := &safeCounter{}
	assert.Nil(t, adapter.Register("record", counter.handle))
	assert.ErrorIs(t, adapter.Register("record", counter.handle), ErrDuplicateHandler)

	err = adapter.Perform(JobParams{
		Name:    "record_contact",
		Handler: "record",
		Args:    map[string]interface{}{"first_name": "jane"},
	})
	assert.Nil(t, err)

	adapter.Start()
	defer adapter.Stop()

	assert.Eventually(t, func() bool { return counter.count() == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "jane", counter.calls[0]["first_name"])

	assert.Eventually(t, func() bool {
		stats, err := models.CurrentJobsStats()
		return err == nil && stats.SuccessfulJobCount == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestPerformIn(t *testing.T) {
	models.InitializeTestDb()

	adapter, err := newWorkerAdapter("UTC", testBackoffs)
	assert.Nil(t, err)

	counter := &safeCounter{}
	assert.Nil(t, adapter.Register("record", counter.handle))

	err = adapter.PerformIn(1, JobParams{Name: "record_later", Handler: "record"})
	assert.Nil(t, err)

	adapter.Start()
	defer adapter.Stop()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, counter.count(), "job should wait until it is due")

	assert.Eventually(t, func() bool { return counter.count() == 1 }, 5*time.Second, 20*time.Millisecond)
}

func TestFailingJobIsRetriedUntilDead(t *testing.T) {
	models.InitializeTestDb()

	adapter, err := newWorkerAdapter("UTC", testBackoffs)
	assert.Nil(t, err)

	assert.Nil(t, adapter.Register("fail", func(map[string]interface{}) error {
		return errors.New("backup bucket unavailable")
	}))
	assert.Nil(t, adapter.Perform(JobParams{Name: "always_fails", Handler: "fail"}))

	adapter.Start()
	defer adapter.Stop()

	assert.Eventually(t, func() bool {
		jobs, _, err := models.FetchJobsByStatus(models.DEAD_JOB, 1)
		return err == nil && len(jobs) == 1 && jobs[0].Fails == MAX_FAILS
	}, 5*time.Second, 20*time.Millisecond)

	jobs, _, err := models.FetchJobsByStatus(models.DEAD_JOB, 1)
	assert.Nil(t, err)
	assert.Equal(t, "backup bucket unavailable", jobs[0].LastError)
}

func TestPeriodicallyPerformRejectsDuplicateNames(t *testing.T) {
	models.InitializeTestDb()

	adapter, err := newWorkerAdapter("UTC", testBackoffs)
	assert.Nil(t, err)

	job := JobParams{Name: "sqlite_backup", Handler: "backup"}
	assert.Nil(t, adapter.PeriodicallyPerform("*/30 * * * *", job))
	assert.NotNil(t, adapter.PeriodicallyPerform("*/30 * * * *", job))
}
