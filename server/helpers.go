package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/L4er70/ContactBook/server/auth"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/L4er70/ContactBook/server/work"
	"github.com/L4er70/ContactBook/utils"
	"github.com/go-playground/validator"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const MIN_PASSWORD_LENGTH = 8

var (
	phoneNumberRegex = regexp.MustCompile(`^\+?[0-9(][0-9 ().\-]*[0-9](\s*(x|ext\.?)\s*[0-9]+)?$`)

	// sqlite: "UNIQUE constraint failed: users.email"
	// postgres: `duplicate key value violates unique constraint "idx_users_email"`
	uniqueViolationRegex = regexp.MustCompile(`(?:UNIQUE constraint failed: \w+\.(\w+)|unique constraint "(?:idx_)?\w+?_([a-z]+)(?:_key)?")`)
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	if payLoad.Errors == nil {
		payLoad.Errors = []string{}
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func writeError(rw http.ResponseWriter, err error, statusCode int) {
	writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, statusCode)
}

func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	fatalOnError(registerValidators(validate))

	return validate
}

func registerValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return isValidPassword(fl.Field().String())
	})
	if err != nil {
		return err
	}

	return validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return isValidPhoneNumber(fl.Field().String())
	})
}

// isValidPassword requires a digit, a lower & upper case letter and a symbol, without whitespace
func isValidPassword(password string) bool {
	if len(password) < MIN_PASSWORD_LENGTH {
		return false
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, c := range password {
		switch {
		case unicode.IsSpace(c):
			return false
		case unicode.IsDigit(c):
			hasDigit = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case !unicode.IsLetter(c):
			hasSymbol = true
		}
	}

	return hasDigit && hasLower && hasUpper && hasSymbol
}

func isValidPhoneNumber(phoneNumber string) bool {
	return phoneNumberRegex.MatchString(strings.TrimSpace(phoneNumber))
}

// validationMessages turns validator errors into "<field>: <problem>" messages
func validationMessages(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := []string{}
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", fieldErr.Field(), describeFieldError(fieldErr)))
	}

	return messages
}

func describeFieldError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "password":
		return fmt.Sprintf("must be at least %d characters with a digit, a lower & upper case letter and a symbol, without spaces", MIN_PASSWORD_LENGTH)
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fieldErr.Param())
	default:
		return fmt.Sprintf("is invalid (%s)", fieldErr.Tag())
	}
}

// uniqueViolationMessage returns a readable message for unique constraint
// errors, or "" if 'err' is not one.
func uniqueViolationMessage(err error) string {
	matches := uniqueViolationRegex.FindStringSubmatch(err.Error())
	if matches == nil {
		return ""
	}

	column := matches[1]
	if column == "" {
		column = matches[2]
	}

	return fmt.Sprintf("%s is already taken", humanizeText(column))
}

func humanizeText(text string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// pageParam reads the 1-based 'page' query parameter, defaulting to 1
func pageParam(r *http.Request) (int, error) {
	value := r.URL.Query().Get("page")
	if value == "" {
		return 1, nil
	}

	page, err := strconv.Atoi(value)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("page must be a positive number")
	}

	return page, nil
}

func idParam(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", value)
	}

	return uint(id), nil
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	// validate that the user account still exists
	_, err = models.FindUserBy("id", tokenClaims.Subject)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims}
}

func decodedJWTFrom(r *http.Request) DecodedJWT {
	decodedJWT, ok := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
	if !ok {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	return decodedJWT
}

// client is only able to update/view their own record unless client is an admin
// who can GET/DELETE other users
func canAccessUserResource(r *http.Request, userClaims *auth.ContactBookTokenClaims) bool {
	allowedMethodsForAdmins := map[string]bool{http.MethodGet: true, http.MethodDelete: true}

	if r.Context().Value(RequestContextKey("requestUserID")) == userClaims.Subject {
		return true
	}

	return userClaims.HasRole(models.ADMIN_USER_ROLE) && allowedMethodsForAdmins[r.Method]
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("ContactBook server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, backup *sqliteBackup) {
	workerPool.Stop()

	if backup != nil {
		if err := backup.run(nil); err != nil {
			logg.Error(err)
		}
	}

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("ContactBook server shutdown failed:%+s", err)
	}

	if err := models.Close(); err != nil {
		logg.Error(err)
	}

	logg.Infof("ContactBook server stopped properly")
}

// ConfigDirectory retrieves the directory to store contactbook data & configs
// Or logs an error message and then calls os.Exit if it's unable to.
func ConfigDirectory(devMode bool) string {
	// Use 'contactbook' folder in home directory for prod
	configFolderName := "contactbook"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
