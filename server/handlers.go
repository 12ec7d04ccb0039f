package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/L4er70/ContactBook/server/auth"
	"github.com/L4er70/ContactBook/server/auth/key"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func health(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")

	if err := models.Ping(); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"database is unavailable"}}, http.StatusServiceUnavailable)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]string{"status": "ok"}}, http.StatusOK)
}

func jwks(rw http.ResponseWriter, r *http.Request) {
	jwk, err := authKeyPair.JWK()
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(http.StatusOK)
	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(jwk))
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := loginRequest{}
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"invalid request body"}}, http.StatusBadRequest)
		return
	}

	passwordHash, err := models.FindUserPassword(data.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	if !auth.CheckPasswordHash(data.Password, passwordHash) {
		writeResponse(rw, ResponsePayload{Errors: []string{"email/password is invalid"}}, http.StatusUnauthorized)
		return
	}

	user, err := models.FindUserBy("email", data.Email)
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	roleName, err := user.RoleName()
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	claims := auth.NewTokenClaims(user.ID, user.FirstName, user.LastName, roleName, tokenTTL)
	token, err := auth.EncodeJWT(claims, authKeyPair)
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    loginResponse{Token: token, ExpiresAt: claims.ExpiresAt},
	}, http.StatusOK)
}

func createUser(rw http.ResponseWriter, r *http.Request) {
	data := createUserRequest{}

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"invalid request body"}}, http.StatusBadRequest)
		return
	}

	data.Email = strings.TrimSpace(data.Email)
	if err = validate.Struct(data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: validationMessages(err)}, http.StatusBadRequest)
		return
	}

	roleName, err := roleForNewUser(data.Role)
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	role, err := models.FindRole(roleName)
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	user := models.User{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.Password,
		RoleID:    role.ID,
	}

	err = models.CreateUser(&user)
	if err != nil {
		if msg := uniqueViolationMessage(err); msg != "" {
			writeResponse(rw, ResponsePayload{Errors: []string{msg}}, http.StatusConflict)
			return
		}

		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	user.Password = ""
	writeResponse(rw, ResponsePayload{Success: true, Data: user}, http.StatusCreated)
}

// roleForNewUser makes the very first user an admin, everyone else defaults to 'user'
func roleForNewUser(requested string) (string, error) {
	userExists, err := models.AtLeastOneUserExists()
	if err != nil {
		return "", err
	}

	if !userExists {
		return models.ADMIN_USER_ROLE, nil
	}

	if requested == "" {
		return models.BASIC_USER_ROLE, nil
	}

	return requested, nil
}

func findUser(rw http.ResponseWriter, r *http.Request) {
	user, err := models.FindUserBy("id", mux.Vars(r)["uid"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"user not found"}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: user}, http.StatusOK)
}

func updateUser(rw http.ResponseWriter, r *http.Request) {
	data := updateUserRequest{}

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"invalid request body"}}, http.StatusBadRequest)
		return
	}

	if data.FirstName == nil && data.LastName == nil && data.Password == nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	if err = validate.Struct(data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: validationMessages(err)}, http.StatusBadRequest)
		return
	}

	updates := make(map[string]interface{})
	errs := []string{}
	for field, value := range map[string]*string{"first_name": data.FirstName, "last_name": data.LastName, "password": data.Password} {
		if value == nil {
			continue
		}
		if strings.TrimSpace(*value) == "" {
			errs = append(errs, fmt.Sprintf("%s: is required", field))
			continue
		}
		updates[field] = strings.TrimSpace(*value)
		if field == "password" {
			updates[field] = *value
		}
	}

	if len(errs) > 0 {
		writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
		return
	}

	user, err := models.FindUserBy("id", mux.Vars(r)["uid"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"user not found"}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	if err = user.Update(updates); err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

func deleteUser(rw http.ResponseWriter, r *http.Request) {
	err := models.DeleteUser(mux.Vars(r)["uid"])
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

func fetchJobs(rw http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeError(rw, err, http.StatusBadRequest)
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !models.IsJobStatus(status) {
		writeResponse(rw, ResponsePayload{Errors: []string{fmt.Sprintf("invalid job status %q", status)}}, http.StatusBadRequest)
		return
	}

	var jobs []models.Job
	var paging *models.Paging
	if status == "" {
		jobs, paging, err = models.FetchJobs(page)
	} else {
		jobs, paging, err = models.FetchJobsByStatus(status, page)
	}

	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"jobs": jobs, "paging": paging},
	}, http.StatusOK)
}

func fetchJobsStats(rw http.ResponseWriter, r *http.Request) {
	stats, err := models.CurrentJobsStats()
	if err != nil {
		writeError(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: stats}, http.StatusOK)
}

// tokenTTLFromHours falls back to a day when no ttl is configured
func tokenTTLFromHours(hours int) time.Duration {
	if hours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}
