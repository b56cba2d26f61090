package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"agroadmin/apiclient"
)

type M map[string]any

// RespondWithJSON writes data as a JSON body with the given status.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[utils] encode response: %v", err)
	}
}

// RespondWithError writes a failure that did not come from the store API.
func RespondWithError(w http.ResponseWriter, code int, kind, msg, action string) {
	RespondWithJSON(w, code, M{
		"success": false,
		"kind":    kind,
		"message": msg,
		"action":  action,
	})
}

// RespondWithFailure relays err to the browser with the status, kind and action of its
// apiclient classification.
func RespondWithFailure(w http.ResponseWriter, err error) {
	ae := apiclient.As(err)
	RespondWithError(w, ae.HTTPStatus(), string(ae.Kind), ae.Message, ae.Action())
}

// RespondWithFieldErrors answers a form that failed validation.
func RespondWithFieldErrors(w http.ResponseWriter, errs map[string]string) {
	RespondWithJSON(w, http.StatusBadRequest, M{
		"success": false,
		"kind":    string(apiclient.KindValidation),
		"message": "Please correct the highlighted fields",
		"action":  "none",
		"errors":  errs,
	})
}

// ErrBusy is returned by a page while a previous submit is still in flight.
var ErrBusy = errors.New("another request is still in progress")

// RespondBusy answers a second submit made while one is in flight.
func RespondBusy(w http.ResponseWriter) {
	RespondWithError(w, http.StatusConflict, "busy", "Please wait for the current request to finish", "none")
}
