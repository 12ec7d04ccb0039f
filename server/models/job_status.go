package models

const (
	ENQUEUED_JOB    = "enqueued"
	IN_PROGRESS_JOB = "in-progress"
	SUCCESSFUL_JOB  = "successful"
	DEAD_JOB        = "dead"
	SCHEDULED_JOB   = "scheduled"
)

// JobStatusNames lists every job status in the order they are seeded.
var JobStatusNames = []string{ENQUEUED_JOB, IN_PROGRESS_JOB, SUCCESSFUL_JOB, DEAD_JOB, SCHEDULED_JOB}

type JobStatus struct {
	BaseModel
	Name string `json:"name"`
	Jobs []Job  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

// JobsStats counts the jobs queued under each status.
type JobsStats struct {
	EnqueuedJobCount   int64 `json:"enqueued_job_count"`
	InProgressJobCount int64 `json:"in_progress_job_count"`
	SuccessfulJobCount int64 `json:"successful_job_count"`
	DeadJobCount       int64 `json:"dead_job_count"`
	ScheduledJobCount  int64 `json:"scheduled_job_count"`
}

func (stats *JobsStats) counter(status string) *int64 {
	switch status {
	case ENQUEUED_JOB:
		return &stats.EnqueuedJobCount
	case IN_PROGRESS_JOB:
		return &stats.InProgressJobCount
	case SUCCESSFUL_JOB:
		return &stats.SuccessfulJobCount
	case DEAD_JOB:
		return &stats.DeadJobCount
	case SCHEDULED_JOB:
		return &stats.ScheduledJobCount
	}
	return nil
}

// IsJobStatus reports whether name is one of the seeded job statuses.
func IsJobStatus(name string) bool {
	for _, status := range JobStatusNames {
		if status == name {
			return true
		}
	}
	return false
}

func FindJobStatus(name string) (*JobStatus, error) {
	jobStatus := JobStatus{}
	err := db.Select("ID", "Name").Where("name = ?", name).First(&jobStatus).Error
	if err != nil {
		return nil, err
	}

	return &jobStatus, nil
}
