package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCronScheduler(t *testing.T) {
	scheduler, err := NewCronScheduler("America/Toronto")
	assert.Nil(t, err)
	assert.Equal(t, "America/Toronto", scheduler.Location().String())

	_, err = scheduler.Cron("*/30 * * * *").Tag("backup").Do(func() {})
	assert.Nil(t, err)

	_, err = scheduler.Cron("*/30 * * * *").Tag("backup").Do(func() {})
	assert.NotNil(t, err, "tags should be unique")

	_, err = NewCronScheduler("Mars/Olympus_Mons")
	assert.NotNil(t, err)
}
