package server

import (
	"errors"
	"net/http"

	"github.com/L4er70/ContactBook/server/models"
	"github.com/gorilla/mux"
)

func fetchContacts(rw http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeError(rw, err, http.StatusBadRequest)
		return
	}

	contacts, paging, err := models.ListContacts(r.URL.Query().Get("search"), page)
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"contacts": contacts, "paging": paging},
	}, http.StatusOK)
}

func findContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, models.ErrContactNotFound, http.StatusNotFound)
		return
	}

	contact, err := models.FindContact(id)
	if errors.Is(err, models.ErrContactNotFound) {
		writeError(rw, err, http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func createContact(rw http.ResponseWriter, r *http.Request) {
	form, ok := contactFormFromRequest(rw, r)
	if !ok {
		return
	}

	contact, err := models.CreateContact(form)
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	scheduleBackupAfterChange()
	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusCreated)
}

func updateContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, models.ErrContactNotFound, http.StatusNotFound)
		return
	}

	form, ok := contactFormFromRequest(rw, r)
	if !ok {
		return
	}

	contact, err := models.UpdateContact(id, form)
	if errors.Is(err, models.ErrContactNotFound) {
		writeError(rw, err, http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	scheduleBackupAfterChange()
	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func deleteContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, models.ErrContactNotFound, http.StatusNotFound)
		return
	}

	if err = models.DeleteContact(id); err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	scheduleBackupAfterChange()
	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

// contactFormFromRequest decodes, normalizes & validates a contact submission,
// writing a 400 response & returning false when it is unusable
func contactFormFromRequest(rw http.ResponseWriter, r *http.Request) (*models.ContactForm, bool) {
	form, err := decodeContactForm(rw, r)
	if err != nil {
		writeError(rw, err, http.StatusBadRequest)
		return nil, false
	}

	form.Normalize()
	if err = validate.Struct(form); err != nil {
		writeResponse(rw, ResponsePayload{Errors: validationMessages(err)}, http.StatusBadRequest)
		return nil, false
	}

	return form, true
}
