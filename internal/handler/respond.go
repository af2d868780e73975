package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"orderdesk/internal/service"
)

const maxBodyBytes = 64 << 10

var errEmptyBody = errors.New("empty body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError maps service errors onto HTTP statuses. Internal errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, op string, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case service.KindNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case service.KindUnauthorized:
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case service.KindTransient:
		slog.Warn(op+" failed", "error", err)
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		slog.Error(op+" failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a size-limited JSON body into v. It returns errEmptyBody
// when the request has no body at all.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

func int64Param(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
