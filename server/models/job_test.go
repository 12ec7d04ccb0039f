package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateUniqueJobByName(t *testing.T) {
	InitializeTestDb()

	err := CreateUniqueJobByName("sqlite_backup", "backup", "{}")
	assert.Nil(t, err)

	err = CreateUniqueJobByName("sqlite_backup", "backup", "{}")
	assert.ErrorIs(t, err, ErrDuplicateJob)

	job, err := LastJob(ENQUEUED_JOB, false)
	assert.Nil(t, err)
	assert.Equal(t, "sqlite_backup", job.Name)

	claimed, err := job.MarkAsClaimed()
	assert.Nil(t, err)
	assert.True(t, claimed)

	claimed, err = job.MarkAsClaimed()
	assert.Nil(t, err)
	assert.False(t, claimed, "a job can only be claimed once")

	stats, err := CurrentJobsStats()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), stats.InProgressJobCount)
	assert.Equal(t, int64(0), stats.EnqueuedJobCount)
}

func TestFirstScheduledJobToBeQueued(t *testing.T) {
	InitializeTestDb()

	err := CreateScheduledJob("later", "noop", "{}", time.Now().Add(time.Hour))
	assert.Nil(t, err)

	_, err = FirstScheduledJobToBeQueued()
	assert.NotNil(t, err, "job should not be due yet")

	err = CreateScheduledJob("now", "noop", "{}", time.Now().Add(-time.Second))
	assert.Nil(t, err)

	job, err := FirstScheduledJobToBeQueued()
	assert.Nil(t, err)
	assert.Equal(t, "now", job.Name)
	assert.Equal(t, SCHEDULED_JOB, job.JobStatus.Name)
}

func TestFetchJobsByStatus(t *testing.T) {
	InitializeTestDb()

	assert.Nil(t, CreateUniqueJobByName("a", "noop", "{}"))
	assert.Nil(t, CreateUniqueJobByName("b", "noop", "{}"))

	jobs, paging, err := FetchJobsByStatus(ENQUEUED_JOB, 1)
	assert.Nil(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, "b", jobs[0].Name)
	assert.Equal(t, int64(2), paging.Total)

	jobs, _, err = FetchJobsByStatus(DEAD_JOB, 1)
	assert.Nil(t, err)
	assert.Empty(t, jobs)
}
