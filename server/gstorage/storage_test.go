package gstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	gs := &GStorage{bucket: "contactbook", prefix: "contactbook-dev"}
	assert.Equal(t, "contactbook-dev/contactbook.db", gs.ObjectName("contactbook.db"))

	gs.prefix = ""
	assert.Equal(t, "contactbook.db", gs.ObjectName("contactbook.db"))
}
