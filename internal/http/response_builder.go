// Package http provides HTTP server and handler implementations.
//
// This file implements JSON and attachment responses and the mapping from
// domain errors to status codes.

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"hypotheek/internal/core"
	"hypotheek/internal/log"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error to its HTTP status and a stable code.
func statusFor(err error) (int, string) {
	var bre *badRequestError
	switch {
	case errors.As(err, &bre):
		return http.StatusBadRequest, "bad_request"
	case core.IsInvalidParams(err):
		return http.StatusUnprocessableEntity, "invalid_parameters"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeJSON encodes v before touching w so encoding failures still yield a 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "JSON encoding failed", log.FieldError, err)
		http.Error(w, `{"error":"internal error","code":"internal_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError logs unexpected failures and writes the JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
		msg = "internal error"
	}
	writeJSON(w, r, status, ErrorBody{Error: msg, Code: code})
}

// writeAttachment sends body as a download named filename.
func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
