package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ratehub/ratehub-backend/internal/apperr"
)

// APIError is the wire shape of every failure: a human message plus a
// machine-readable kind.
type APIError struct {
	Message string      `json:"message"`
	Kind    string      `json:"kind"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, kind, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Message: msg,
		Kind:    kind,
		Details: details,
	})
}

// Error maps a service error onto the wire via its kind. Internal errors are
// not echoed to the client.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	if kind == apperr.KindInternal {
		msg = "internal error"
	}
	WriteError(w, apperr.HTTPStatus(kind), string(kind), msg, nil)
}
