package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/L4er70/ContactBook/server/models"
)

// MAX_FORM_BYTES caps the size of a contact submission body
const MAX_FORM_BYTES = 1 << 20

// decodeContactForm reads a contact submission sent either as JSON or as an
// urlencoded form whose repeated keys make up the parallel arrays.
func decodeContactForm(rw http.ResponseWriter, r *http.Request) (*models.ContactForm, error) {
	r.Body = http.MaxBytesReader(rw, r.Body, MAX_FORM_BYTES)
	form := models.ContactForm{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &form, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}

	values := r.PostForm
	var err error

	if form.ID, err = formID(values.Get("id")); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}

	form.FirstName = values.Get("first_name")
	form.LastName = values.Get("last_name")

	if form.EmailIDs, err = formIDs("email_ids", values["email_ids"]); err != nil {
		return nil, err
	}
	form.EmailAddresses = values["email_addresses"]

	if form.PhoneIDs, err = formIDs("phone_ids", values["phone_ids"]); err != nil {
		return nil, err
	}
	form.PhoneNumbers = values["phone_numbers"]
	form.PhoneTypes = values["phone_types"]

	if form.AddressIDs, err = formIDs("address_ids", values["address_ids"]); err != nil {
		return nil, err
	}
	form.StreetAddresses = values["street_addresses"]
	form.Cities = values["cities"]
	form.States = values["states"]
	form.ZipCodes = values["zip_codes"]
	form.Countries = values["countries"]
	form.AddressTypes = values["address_types"]

	return &form, nil
}

// formID parses a submitted id, an empty value means "new"
func formID(value string) (uint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number, got %q", value)
	}

	return uint(id), nil
}

func formIDs(field string, values []string) ([]uint, error) {
	ids := make([]uint, 0, len(values))
	for i, value := range values {
		id, err := formID(value)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
