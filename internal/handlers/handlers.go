// Package handlers implements the HTTP API. Handlers return errors; handle
// is the single boundary that maps them to a status and a JSON body.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/averma/chitchat/internal/apperr"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type apiFunc func(w http.ResponseWriter, r *http.Request) error

func handle(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		status := apperr.Status(err)
		if status >= http.StatusInternalServerError {
			slog.Error("handler error", "method", r.Method, "path", r.URL.Path, "error", err)
			writeJSON(w, status, map[string]string{"message": "internal server error"})
			return
		}
		writeJSON(w, status, map[string]string{"message": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// pagination reads limit/offset query parameters with a sane default and cap.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
