// Package response writes JSON responses in the API's wire format.
//
// Successful responses carry the resource itself (or a {"msg": ..., ...}
// object for mutations); failures always carry {"msg": "..."}.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// M is a shorthand for ad-hoc response objects.
type M = map[string]any

type errorBody struct {
	Msg    string            `json:"msg"`
	Errors map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK sends a 200 with v.
func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// Created sends a 201 with v.
func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

// Error sends {"msg": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Msg: message})
}

// ValidationError sends a 400 with a summary message and the field errors.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusBadRequest, errorBody{Msg: validate.Summary(errs), Errors: errs})
}

// FromError maps err onto its HTTP status. Errors that are not classified
// are logged and reported as 500 without leaking details.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var ae *apperr.Error
	errors.As(err, &ae)
	Error(w, kind.Status(), ae.Message)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "not found")
}
