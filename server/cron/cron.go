package cron

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// NewCronScheduler returns a scheduler running in 'timeZone' that rejects duplicate job tags.
// An empty 'timeZone' means UTC.
func NewCronScheduler(timeZone string) (*gocron.Scheduler, error) {
	location, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid cron time zone %q: %w", timeZone, err)
	}

	scheduler := gocron.NewScheduler(location)
	scheduler.TagsUnique()

	return scheduler, nil
}
