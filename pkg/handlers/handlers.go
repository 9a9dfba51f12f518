// Package handlers provides JSON response and request helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// ErrInvalidRequest marks a request that could not be decoded or validated.
var ErrInvalidRequest = errors.New("invalid request")

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."} with the given status code.
// Server errors are logged at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// DecodeJSON decodes the request body into T, rejecting unknown fields
// and trailing content. Failures wrap ErrInvalidRequest.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return v, fmt.Errorf("%w: unexpected trailing content", ErrInvalidRequest)
	}

	return v, nil
}

// PathInt parses the named path value as an integer. Failures wrap ErrInvalidRequest.
func PathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidRequest, name, raw)
	}
	return n, nil
}

// PathInt64 parses the named path value as a 64-bit identifier. Failures wrap ErrInvalidRequest.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidRequest, name, raw)
	}
	return n, nil
}
