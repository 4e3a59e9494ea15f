package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/registry"
)

// Error codes written in the "error" field of a failure body.
const (
	CodeBadRequest = "bad_request"
	CodeNotFound   = "not_found"
	CodeInternal   = "internal_error"
)

// Error is a client facing failure.
type Error struct {
	Status      int
	Code        string
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Description
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(desc string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeBadRequest, Description: desc}
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorErr(log.CatServer, "encode response", err)
	}
}

// WriteError maps err to a status and JSON body. Internal failures are
// logged and never echo their message to the client.
func WriteError(w http.ResponseWriter, err error) {
	var e *Error
	switch {
	case errors.As(err, &e):
	case errors.Is(err, registry.ErrNotFound):
		e = &Error{Status: http.StatusNotFound, Code: CodeNotFound, Description: err.Error()}
	default:
		e = &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Err: err}
	}

	body := errorBody{Error: e.Code}
	if e.Status < http.StatusInternalServerError {
		body.ErrorDescription = e.Description
	} else {
		log.ErrorErr(log.CatServer, "request failed", err)
	}
	WriteJSON(w, e.Status, body)
}
