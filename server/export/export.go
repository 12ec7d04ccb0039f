// Package export renders contacts as downloadable CSV or XLSX files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/L4er70/ContactBook/server/models"
	"github.com/xuri/excelize/v2"
)

const (
	SHEET_NAME = "Contacts"

	CSV_CONTENT_TYPE  = "text/csv"
	XLSX_CONTENT_TYPE = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var ErrUnknownFormat = errors.New("unknown export format")

var Header = []string{"Id", "FirstName", "LastName", "Emails", "Phones", "Addresses"}

// Format writes a list of contacts in one file format
type Format struct {
	Name        string
	FileName    string
	ContentType string
	Write       func(w io.Writer, contacts []models.Contact) error
}

var formats = map[string]Format{
	"csv": {
		Name:        "csv",
		FileName:    "contacts.csv",
		ContentType: CSV_CONTENT_TYPE,
		Write:       WriteCSV,
	},
	"xlsx": {
		Name:        "xlsx",
		FileName:    "contacts.xlsx",
		ContentType: XLSX_CONTENT_TYPE,
		Write:       WriteXLSX,
	},
}

// Lookup returns the format registered under 'name', ignoring case
func Lookup(name string) (Format, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q, must be one of %v", ErrUnknownFormat, name, FormatNames())
	}

	return format, nil
}

func FormatNames() []string {
	names := []string{}
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Row flattens a contact into the exported columns
func Row(contact models.Contact) []string {
	emails := []string{}
	for _, email := range contact.Emails {
		emails = append(emails, email.EmailAddress)
	}

	phones := []string{}
	for _, phone := range contact.Phones {
		phones = append(phones, fmt.Sprintf("%s: %s", phone.PhoneType, phone.PhoneNumber))
	}

	addresses := []string{}
	for _, address := range contact.Addresses {
		addresses = append(addresses, formatAddress(address))
	}

	return []string{
		strconv.FormatUint(uint64(contact.ID), 10),
		contact.FirstName,
		contact.LastName,
		strings.Join(emails, "|"),
		strings.Join(phones, "|"),
		strings.Join(addresses, "|"),
	}
}

func WriteCSV(w io.Writer, contacts []models.Contact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}

	for _, contact := range contacts {
		if err := writer.Write(Row(contact)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func WriteXLSX(w io.Writer, contacts []models.Contact) error {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", SHEET_NAME)

	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for col, title := range Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}

		if err = file.SetCellValue(SHEET_NAME, cell, title); err != nil {
			return err
		}
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}

	if err = file.SetCellStyle(SHEET_NAME, "A1", lastHeaderCell, headerStyle); err != nil {
		return err
	}

	for i, contact := range contacts {
		row := Row(contact)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}

			var cellValue interface{} = value
			if col == 0 {
				cellValue = contact.ID
			}

			if err = file.SetCellValue(SHEET_NAME, cell, cellValue); err != nil {
				return err
			}
		}
	}

	return file.Write(w)
}

func formatAddress(address models.Address) string {
	formatted := fmt.Sprintf("%s: %s, %s, %s %s, %s",
		address.AddressType,
		address.StreetAddress,
		address.City,
		address.State,
		address.ZipCode,
		address.Country,
	)

	return strings.Trim(formatted, " ,")
}
