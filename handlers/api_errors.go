package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/camden-git/curriculumbackend/services"
	"github.com/camden-git/curriculumbackend/validation"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	maxJSONBody = 1 << 20

	msgInvalidCredentials = "These credentials do not match our records."
	msgUnauthenticated    = "Unauthenticated."
)

// APIErrorResponse is the body of every error response.
type APIErrorResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// StatusResponse is the {status, message[, data]} envelope of lifecycle writes.
type StatusResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// WriteAPIError writes a standardized error response with the given HTTP status, message and field errors.
func WriteAPIError(w http.ResponseWriter, httpStatus int, message string, fields map[string][]string) {
	writeJSON(w, httpStatus, APIErrorResponse{Status: statusError, Message: message, Errors: fields})
}

// writeServiceError maps a service error onto its HTTP status. what names the failed
// operation in the safe 500 message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var verr *validation.Errors
	var scErr *services.StorageConsistencyError
	switch {
	case errors.As(err, &verr):
		WriteAPIError(w, http.StatusUnprocessableEntity, "Validation failed.", verr.Fields)
	case errors.Is(err, services.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, notFoundMessage(err), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		WriteAPIError(w, http.StatusUnauthorized, msgInvalidCredentials,
			map[string][]string{"email": {msgInvalidCredentials}})
	case errors.Is(err, services.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": msgUnauthenticated})
	case errors.Is(err, services.ErrSetupDone):
		WriteAPIError(w, http.StatusForbidden, "Setup has already been completed.", nil)
	case errors.As(err, &scErr):
		log.Printf("ERROR %s %s: %s failed, storage out of sync: %v", r.Method, r.URL.Path, what, err)
		WriteAPIError(w, http.StatusInternalServerError, fmt.Sprintf("There was an error while trying to %s.", what), nil)
	default:
		log.Printf("ERROR %s %s: %s failed: %v", r.Method, r.URL.Path, what, err)
		WriteAPIError(w, http.StatusInternalServerError, fmt.Sprintf("There was an error while trying to %s.", what), nil)
	}
}

// writeRepoError renders a missing row as "<entity> not found." and anything else
// through writeServiceError.
func writeRepoError(w http.ResponseWriter, r *http.Request, err error, entity, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		WriteAPIError(w, http.StatusNotFound, entity+" not found.", nil)
		return
	}
	writeServiceError(w, r, err, what)
}

// notFoundMessage turns "study 4: resource not found" into "Study not found."
func notFoundMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "+services.ErrNotFound.Error()); i > 0 {
		subject := strings.TrimRight(msg[:i], "0123456789 ")
		if j := strings.LastIndex(subject, ": "); j >= 0 {
			subject = subject[j+2:]
		}
		if subject != "" {
			return strings.ToUpper(subject[:1]) + subject[1:] + " not found."
		}
	}
	return "Resource not found."
}

// parseID reads a positive numeric URL parameter.
func parseID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func writeBadID(w http.ResponseWriter, name string) {
	WriteAPIError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format.", strings.ReplaceAll(name, "_", " ")), nil)
}

// decodeBody decodes a JSON object into dst and returns the keys sent as null. An empty
// body decodes as {}. Type mismatches are field errors; anything else unparseable is a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) (validation.Nulls, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		WriteAPIError(w, http.StatusRequestEntityTooLarge, "Request body too large.", nil)
		return nil, false
	}
	if strings.TrimSpace(string(body)) == "" {
		body = []byte("{}")
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field := typeErr.Field
			WriteAPIError(w, http.StatusUnprocessableEntity, "Validation failed.", map[string][]string{
				field: {fmt.Sprintf("The %s field must be a %s.", strings.ReplaceAll(field, "_", " "), jsonKind(typeErr.Type.Kind().String()))},
			})
			return nil, false
		}
		WriteAPIError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return nil, false
	}

	nulls, err := validation.NullKeys(body)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return nil, false
	}
	return nulls, true
}

func jsonKind(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"):
		return "integer"
	case strings.HasPrefix(kind, "float"):
		return "number"
	case kind == "bool":
		return "boolean"
	default:
		return "string"
	}
}
