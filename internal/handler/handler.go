// Package handler holds the thin HTTP layer: decode the request, call
// the scheduling service or store, map domain errors to status codes,
// encode JSON.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"counsel-scheduling-api/internal/scheduling"
	"counsel-scheduling-api/internal/store"
	"counsel-scheduling-api/internal/timeslot"
)

type Handler struct {
	svc    *scheduling.Service
	store  *store.Store
	secret string
}

func New(svc *scheduling.Service, st *store.Store, secret string) *Handler {
	return &Handler{svc: svc, store: st, secret: secret}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the scheduling taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an infrastructure failure: logged,
// reported as a plain 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		ve *scheduling.ValidationError
		sc *scheduling.SlotConflictError
		se *scheduling.StateError
		ae *scheduling.AuthorizationError
	)
	switch {
	case errors.Is(err, timeslot.ErrInvalidTime),
		errors.Is(err, scheduling.ErrInvalidDuration),
		errors.As(err, &ve):
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ae):
		writeErrorMsg(w, http.StatusForbidden, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		writeErrorMsg(w, http.StatusNotFound, "not found")
	case errors.As(err, &sc):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    err.Error(),
			"conflict": sc,
		})
	case errors.Is(err, scheduling.ErrChainLocked), errors.As(err, &se):
		writeErrorMsg(w, http.StatusConflict, err.Error())
	default:
		log.Printf("handler: %v", err)
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
	}
}

// parseDate accepts a plain calendar date or a full timestamp; stored
// dates may carry a time component from client input either way.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
