package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"counsel-scheduling-api/internal/middleware"
	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/scheduling"
	"counsel-scheduling-api/internal/timeslot"
)

type teamMeetRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    int    `json:"duration"`
	Medium      string `json:"medium"`
	RecipientID string `json:"recipientId"`
	OrgID       string `json:"orgId"`
}

func (h *Handler) CreateTeamMeet(w http.ResponseWriter, r *http.Request) {
	var req teamMeetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}

	m, err := h.svc.CreateTeamMeet(r.Context(), scheduling.TeamMeetInput{
		Subject:     req.Subject,
		Description: req.Description,
		Date:        date,
		StartTime:   req.Time,
		Duration:    req.Duration,
		Medium:      model.Medium(req.Medium),
		RequesterID: middleware.UserID(r.Context()),
		RecipientID: req.RecipientID,
		OrgID:       req.OrgID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) GetTeamMeet(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.TeamMeetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// only the two parties can see it; 404 hides existence
	uid := middleware.UserID(r.Context())
	if m.RequesterID != uid && m.RecipientID != uid {
		writeErrorMsg(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListTeamMeets returns the caller's meets for one day, any status.
func (h *Handler) ListTeamMeets(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}
	from, to := timeslot.DayBounds(date)
	meets, err := h.store.TeamMeetsForUserOn(r.Context(), middleware.UserID(r.Context()), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"teamMeets": meets, "count": len(meets)})
}

func (h *Handler) AcceptTeamMeet(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.AcceptTeamMeet(r.Context(), r.PathValue("id"), middleware.UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) RejectTeamMeet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := h.svc.RejectTeamMeet(r.Context(), r.PathValue("id"), middleware.UserID(r.Context()), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) CancelTeamMeet(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.CancelTeamMeet(r.Context(), r.PathValue("id"), middleware.UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) RescheduleTeamMeet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string `json:"date"`
		Time     string `json:"time"`
		Duration int    `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}
	m, err := h.svc.RescheduleTeamMeet(r.Context(), r.PathValue("id"), middleware.UserID(r.Context()), date, req.Time, req.Duration)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) CompleteTeamMeet(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.CompleteTeamMeet(r.Context(), r.PathValue("id"), middleware.UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CheckTeamMeetSlot reports both sides of a two-party availability check.
func (h *Handler) CheckTeamMeetSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := parseDate(q.Get("date"))
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}
	duration, _ := strconv.Atoi(q.Get("duration"))
	requesterID := q.Get("requesterId")
	if requesterID == "" {
		requesterID = middleware.UserID(r.Context())
	}

	check, err := h.svc.CheckTeamMeetSlot(r.Context(), requesterID, q.Get("recipientId"), date, q.Get("time"), duration)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// Schedule serves the caller's appointments for a day as an ICS feed.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		var err error
		if date, err = parseDate(d); err != nil {
			writeErrorMsg(w, http.StatusBadRequest, "invalid date")
			return
		}
	}
	h.serveICS(w, r, date)
}
