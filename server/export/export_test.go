package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/L4er70/ContactBook/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func sampleContacts() []models.Contact {
	return []models.Contact{
		{
			BaseModel: models.BaseModel{ID: 1},
			FirstName: "Jane",
			LastName:  "Doe, Jr.",
			Emails:    []models.Email{{EmailAddress: "jane@example.com"}, {EmailAddress: "j@work.com"}},
			Phones:    []models.Phone{{PhoneNumber: "555-0100", PhoneType: "Mobile"}},
			Addresses: []models.Address{{
				StreetAddress: "1 Main St",
				City:          "Toronto",
				State:         "ON",
				ZipCode:       "M5V",
				Country:       "Canada",
				AddressType:   "Home",
			}},
		},
		{
			BaseModel: models.BaseModel{ID: 2},
			FirstName: "John",
			LastName:  "Roe",
			Addresses: []models.Address{{StreetAddress: "9 Elm Rd", AddressType: "Work"}},
		},
	}
}

func TestRow(t *testing.T) {
	contacts := sampleContacts()

	assert.Equal(t, []string{
		"1",
		"Jane",
		"Doe, Jr.",
		"jane@example.com|j@work.com",
		"Mobile: 555-0100",
		"Home: 1 Main St, Toronto, ON M5V, Canada",
	}, Row(contacts[0]))

	assert.Equal(t, []string{"2", "John", "Roe", "", "", "Work: 9 Elm Rd"}, Row(contacts[1]))
}

func TestWriteCSV(t *testing.T) {
	buf := new(bytes.Buffer)
	assert.Nil(t, WriteCSV(buf, sampleContacts()))

	records, err := csv.NewReader(buf).ReadAll()
	assert.Nil(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "Doe, Jr.", records[1][2], "commas should survive quoting")
}

func TestWriteCSVEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	assert.Nil(t, WriteCSV(buf, nil))
	assert.Equal(t, "Id,FirstName,LastName,Emails,Phones,Addresses\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	buf := new(bytes.Buffer)
	assert.Nil(t, WriteXLSX(buf, sampleContacts()))

	file, err := excelize.OpenReader(buf)
	assert.Nil(t, err)

	rows, err := file.GetRows(SHEET_NAME)
	assert.Nil(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Home: 1 Main St, Toronto, ON M5V, Canada", rows[1][5])
	assert.Equal(t, "Work: 9 Elm Rd", rows[2][5])
}

func TestLookup(t *testing.T) {
	format, err := Lookup("CSV")
	assert.Nil(t, err)
	assert.Equal(t, "contacts.csv", format.FileName)

	format, err = Lookup("xlsx")
	assert.Nil(t, err)
	assert.Equal(t, XLSX_CONTENT_TYPE, format.ContentType)

	_, err = Lookup("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, []string{"csv", "xlsx"}, FormatNames())
}
