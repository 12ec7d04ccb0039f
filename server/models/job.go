package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

const jobStatusJoin = "INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?"

type Job struct {
	BaseModel
	Fails       int        `json:"fails"`
	Name        string     `json:"name"`
	Handler     string     `json:"handler"`
	Args        string     `json:"args"`
	LastError   string     `json:"last_error"`
	Claimed     bool       `json:"claimed" gorm:"default:false"`
	EnqueueAt   time.Time  `json:"enqueue_at"`
	JobStatusID uint       `json:"job_status_id"`
	JobStatus   *JobStatus `json:"status"`
}

func (job *Job) MarkAsClaimed() (bool, error) {
	inProgressStatus, err := FindJobStatus(IN_PROGRESS_JOB)
	if err != nil {
		return false, err
	}

	res := db.Model(&Job{}).Where("id = ? AND claimed = ?", job.ID, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
	})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (job *Job) Update(data map[string]interface{}) error {
	return db.Model(job).Updates(data).Error
}

// CreateUniqueJobByName enqueues a job to run as soon as a worker is free.
// ErrDuplicateJob is returned if a job with the same name is already waiting or running.
func CreateUniqueJobByName(name string, handler string, args string) error {
	return createUniqueJob(name, handler, args, ENQUEUED_JOB, time.Now())
}

// CreateScheduledJob adds a job that the scheduled requeuer moves to the queue at 'enqueueAt'
func CreateScheduledJob(name string, handler string, args string, enqueueAt time.Time) error {
	return createUniqueJob(name, handler, args, SCHEDULED_JOB, enqueueAt)
}

func LastJob(status string, claimed bool) (*Job, error) {
	job := Job{}
	err := db.Joins(jobStatusJoin+" AND claimed = ?", status, claimed).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// FirstScheduledJobToBeQueued returns the oldest scheduled job whose enqueue time has passed
func FirstScheduledJobToBeQueued() (*Job, error) {
	job := Job{}
	err := db.Preload("JobStatus").Joins(jobStatusJoin, SCHEDULED_JOB).
		Where("jobs.enqueue_at <= ?", time.Now()).Order("jobs.enqueue_at, jobs.id").First(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func FetchJobsByStatus(status string, page int) ([]Job, *Paging, error) {
	var total int64
	jobs := []Job{}

	err := db.Joins(jobStatusJoin, status).Model(&Job{}).Count(&total).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page)).
		Preload("JobStatus").Order("jobs.id desc").
		Joins(jobStatusJoin, status).Find(&jobs).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	return jobs, newPaging(page, total), nil
}

func FetchJobs(page int) ([]Job, *Paging, error) {
	var total int64
	jobs := []Job{}

	err := db.Model(&Job{}).Count(&total).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page)).
		Preload("JobStatus").Order("jobs.id desc").Find(&jobs).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	return jobs, newPaging(page, total), nil
}

func CurrentJobsStats() (*JobsStats, error) {
	stats := JobsStats{}

	for _, status := range JobStatusNames {
		err := db.Joins(jobStatusJoin, status).Model(&Job{}).Count(stats.counter(status)).Error
		if err != nil {
			return nil, err
		}
	}

	return &stats, nil
}

// LastJobLastUpdated returns the last job of 'status' that has not been
// updated in the last 'minutesAgo' minutes.
func LastJobLastUpdated(minutesAgo uint, status string) (*Job, error) {
	jobStatus, err := FindJobStatus(status)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-time.Duration(minutesAgo) * time.Minute)

	job := Job{}
	err = db.Where("job_status_id = ? AND updated_at <= ?", jobStatus.ID, cutoff).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func createUniqueJob(name, handler, args, status string, enqueueAt time.Time) error {
	pendingStatuses := []JobStatus{}
	err := db.Where("name IN ?", []string{ENQUEUED_JOB, IN_PROGRESS_JOB, SCHEDULED_JOB}).Find(&pendingStatuses).Error
	if err != nil {
		return err
	}

	statusIDs := []uint{}
	var targetStatus *JobStatus
	for i, jobStatus := range pendingStatuses {
		statusIDs = append(statusIDs, jobStatus.ID)
		if jobStatus.Name == status {
			targetStatus = &pendingStatuses[i]
		}
	}

	if targetStatus == nil {
		return errors.New("job status '" + status + "' has not been seeded")
	}

	var count int64
	err = db.Model(&Job{}).Where("name = ? AND job_status_id IN ?", name, statusIDs).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrDuplicateJob
	}

	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		EnqueueAt:   enqueueAt,
		JobStatusID: targetStatus.ID,
	}).Error
}
