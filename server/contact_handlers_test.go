package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/L4er70/ContactBook/server/export"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/L4er70/ContactBook/server/work"
	"github.com/stretchr/testify/assert"
)

func janeDoe() map[string]interface{} {
	return map[string]interface{}{
		"first_name":       "Jane",
		"last_name":        "Doe",
		"email_addresses":  []string{"jane@example.com", ""},
		"phone_numbers":    []string{"+1 (416) 555-0100"},
		"phone_types":      []string{"Mobile"},
		"street_addresses": []string{"1 Main St"},
		"cities":           []string{"Toronto"},
		"states":           []string{"ON"},
		"zip_codes":        []string{"M5V 1A1"},
		"countries":        []string{"Canada"},
		"address_types":    []string{"Home"},
	}
}

func TestContactLifecycle(t *testing.T) {
	router := setupTestServer(t)
	_, adminToken := createTestUser(t, models.ADMIN_USER_ROLE)

	rr := doJSON(router, http.MethodPost, "/api/v1/contacts", adminToken, janeDoe())
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := models.Contact{}
	decodeResponse(t, rr, &created)
	assert.Len(t, created.Emails, 1)
	assert.Len(t, created.Phones, 1)

	contactPath := fmt.Sprintf("/api/v1/contacts/%d", created.ID)

	rr = doJSON(router, http.MethodGet, contactPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Edit through an urlencoded form: keep & change the email, add one, drop the phone
	form := url.Values{
		"id":               {fmt.Sprint(created.ID)},
		"first_name":       {"Janet"},
		"last_name":        {"Doe"},
		"email_ids":        {fmt.Sprint(created.Emails[0].ID), ""},
		"email_addresses":  {"janet@example.com", "second@example.com"},
		"address_ids":      {fmt.Sprint(created.Addresses[0].ID)},
		"street_addresses": {"2 King St"},
	}
	rr = doRequest(router, http.MethodPut, contactPath, adminToken,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	updated := models.Contact{}
	decodeResponse(t, rr, &updated)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Len(t, updated.Emails, 2)
	assert.Equal(t, created.Emails[0].ID, updated.Emails[0].ID)
	assert.Equal(t, "janet@example.com", updated.Emails[0].EmailAddress)
	assert.Empty(t, updated.Phones)
	assert.Len(t, updated.Addresses, 1)
	assert.Equal(t, "2 King St", updated.Addresses[0].StreetAddress)
	assert.Equal(t, "", updated.Addresses[0].City)
	assert.Equal(t, models.UNKNOWN_TYPE, updated.Addresses[0].AddressType)

	rr = doJSON(router, http.MethodDelete, contactPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(router, http.MethodGet, contactPath, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(router, http.MethodDelete, contactPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code, "deleting twice is not an error")
}

func TestCreateContactValidation(t *testing.T) {
	router := setupTestServer(t)
	_, token := createTestUser(t, models.BASIC_USER_ROLE)

	payload := janeDoe()
	payload["first_name"] = " "
	payload["email_addresses"] = []string{"jane@example.com", "not-an-email"}
	payload["phone_numbers"] = []string{"call me"}
	payload["cities"] = []string{strings.Repeat("x", 51)}

	rr := doJSON(router, http.MethodPost, "/api/v1/contacts", token, payload)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	errs := decodeResponse(t, rr, nil).Errors
	assert.Contains(t, errs, "first_name: is required")
	assert.Contains(t, errs, "email_addresses[1]: must be a valid email address")
	assert.Contains(t, errs, "phone_numbers[0]: must be a valid phone number")
	assert.Contains(t, errs, "cities[0]: must not exceed 50 characters")
}

func TestUpdateContactRouteMismatch(t *testing.T) {
	router := setupTestServer(t)
	_, token := createTestUser(t, models.BASIC_USER_ROLE)

	contact, err := models.CreateContact(&models.ContactForm{FirstName: "Jane", LastName: "Doe"})
	assert.Nil(t, err)

	payload := janeDoe()
	payload["id"] = contact.ID + 1

	rr := doJSON(router, http.MethodPut, fmt.Sprintf("/api/v1/contacts/%d", contact.ID), token, payload)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(router, http.MethodPut, "/api/v1/contacts/9999", token, janeDoe())
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContactRoles(t *testing.T) {
	router := setupTestServer(t)
	_, userToken := createTestUser(t, models.BASIC_USER_ROLE)
	_, readonlyToken := createTestUser(t, models.READONLY_USER_ROLE)

	contact, err := models.CreateContact(&models.ContactForm{FirstName: "Jane", LastName: "Doe"})
	assert.Nil(t, err)
	contactPath := fmt.Sprintf("/api/v1/contacts/%d", contact.ID)

	rr := doJSON(router, http.MethodGet, "/api/v1/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(router, http.MethodGet, contactPath, readonlyToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(router, http.MethodPost, "/api/v1/contacts", readonlyToken, janeDoe())
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(router, http.MethodPut, contactPath, readonlyToken, janeDoe())
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(router, http.MethodDelete, contactPath, userToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(router, http.MethodPut, contactPath, userToken, janeDoe())
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFetchContacts(t *testing.T) {
	router := setupTestServer(t)
	_, token := createTestUser(t, models.READONLY_USER_ROLE)

	for _, name := range []string{"Jane", "John", "Janis"} {
		_, err := models.CreateContact(&models.ContactForm{FirstName: name, LastName: "Doe"})
		assert.Nil(t, err)
	}

	rr := doJSON(router, http.MethodGet, "/api/v1/contacts?search=jan", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	data := struct {
		Contacts []models.Contact `json:"contacts"`
		Paging   models.Paging    `json:"paging"`
	}{}
	decodeResponse(t, rr, &data)
	assert.Len(t, data.Contacts, 2)
	assert.Equal(t, int64(2), data.Paging.Total)

	rr = doJSON(router, http.MethodGet, "/api/v1/contacts?page=zero", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportContacts(t *testing.T) {
	router := setupTestServer(t)
	_, token := createTestUser(t, models.READONLY_USER_ROLE)

	_, err := models.CreateContact(&models.ContactForm{
		FirstName:      "Jane",
		LastName:       "Doe",
		EmailAddresses: []string{"jane@example.com", "j@work.com"},
		PhoneNumbers:   []string{"555-0100"},
		PhoneTypes:     []string{"Mobile"},
	})
	assert.Nil(t, err)
	_, err = models.CreateContact(&models.ContactForm{FirstName: "John", LastName: "Roe"})
	assert.Nil(t, err)

	rr := doRequest(router, http.MethodGet, "/api/v1/contacts/export/csv?search=jane", token, "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, export.CSV_CONTENT_TYPE, rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contacts.csv"`, rr.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(rr.Body).ReadAll()
	assert.Nil(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, export.Header, records[0])
	assert.Equal(t, "jane@example.com|j@work.com", records[1][3])
	assert.Equal(t, "Mobile: 555-0100", records[1][4])

	rr = doRequest(router, http.MethodGet, "/api/v1/contacts/export/xlsx", token, "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, export.XLSX_CONTENT_TYPE, rr.Header().Get("Content-Type"))
	assert.NotZero(t, rr.Body.Len())

	rr = doRequest(router, http.MethodGet, "/api/v1/contacts/export/pdf", token, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContactChangesScheduleOneBackup(t *testing.T) {
	router := setupTestServer(t)
	_, adminToken := createTestUser(t, models.ADMIN_USER_ROLE)

	queue, err := work.NewWorkerAdapter("UTC")
	assert.Nil(t, err)
	backupQueue = queue
	defer func() { backupQueue = nil }()

	before := time.Now()
	rr := doJSON(router, http.MethodPost, "/api/v1/contacts", adminToken, janeDoe())
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := models.Contact{}
	decodeResponse(t, rr, &created)

	rr = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/contacts/%d", created.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	jobs, _, err := models.FetchJobsByStatus(models.SCHEDULED_JOB, 1)
	assert.Nil(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, BACKUP_SQLITE_DB_JOB, jobs[0].Name)
	assert.True(t, jobs[0].EnqueueAt.After(before.Add((BACKUP_AFTER_CHANGE_SECONDS-1)*time.Second)))
}

func TestContactChangesWithoutBackupScheduleNothing(t *testing.T) {
	router := setupTestServer(t)
	_, adminToken := createTestUser(t, models.ADMIN_USER_ROLE)

	rr := doJSON(router, http.MethodPost, "/api/v1/contacts", adminToken, janeDoe())
	assert.Equal(t, http.StatusCreated, rr.Code)

	stats, err := models.CurrentJobsStats()
	assert.Nil(t, err)
	assert.Zero(t, stats.ScheduledJobCount)
}
