package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/L4er70/ContactBook/server/export"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/stretchr/testify/assert"
)

func TestExportContactsToFile(t *testing.T) {
	models.InitializeTestDb()

	_, err := models.CreateContact(&models.ContactForm{
		FirstName:       "Jane",
		LastName:        "Doe",
		EmailAddresses:  []string{"jane@example.com"},
		StreetAddresses: []string{"1 Main St"},
		Cities:          []string{"Toronto"},
	})
	assert.Nil(t, err)
	_, err = models.CreateContact(&models.ContactForm{FirstName: "John", LastName: "Roe"})
	assert.Nil(t, err)

	format, err := export.Lookup("csv")
	assert.Nil(t, err)

	output := filepath.Join(t.TempDir(), "exports", "jane.csv")
	count, err := exportContactsToFile(format, "jane", output)
	assert.Nil(t, err)
	assert.Equal(t, 1, count)

	f, err := os.Open(output)
	assert.Nil(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	assert.Nil(t, err)
	assert.Equal(t, [][]string{
		export.Header,
		{records[1][0], "Jane", "Doe", "jane@example.com", "", "Unknown: 1 Main St, Toronto"},
	}, records)
}

func TestExportCmdRejectsUnknownFormat(t *testing.T) {
	cmd := createExportCmd()
	cmd.SetArgs([]string{"--format", "pdf"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}
