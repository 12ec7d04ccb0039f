package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/L4er70/ContactBook/server/export"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/gorilla/mux"
)

func exportContacts(rw http.ResponseWriter, r *http.Request) {
	format, err := export.Lookup(mux.Vars(r)["format"])
	if errors.Is(err, export.ErrUnknownFormat) {
		writeError(rw, err, http.StatusNotFound)
		return
	}

	contacts, err := models.SearchContacts(r.URL.Query().Get("search"))
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	// Render before any header is written
	buf := new(bytes.Buffer)
	if err = format.Write(buf, contacts); err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", format.ContentType)
	rw.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName))
	rw.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	rw.WriteHeader(http.StatusOK)

	if _, err = buf.WriteTo(rw); err != nil {
		logg.Error(err)
	}
}
