package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"counsel-scheduling-api/internal/middleware"
	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/scheduling"
)

type followUpRequest struct {
	LeadID      string `json:"leadId"`
	CounselorID string `json:"counselorId"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    int    `json:"duration"`
	Medium      string `json:"medium"`
	Notes       string `json:"notes"`
}

// ScheduleFollowUp books the next follow-up in a lead's chain.
// Counselors book their own leads; admins can book for any.
func (h *Handler) ScheduleFollowUp(w http.ResponseWriter, r *http.Request) {
	role := middleware.Role(r.Context())
	if role != string(model.RoleCounselor) && role != string(model.RoleAdmin) {
		writeErrorMsg(w, http.StatusForbidden, "not allowed to schedule follow-ups")
		return
	}

	var req followUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}

	fu, err := h.svc.ScheduleFollowUp(r.Context(), scheduling.FollowUpInput{
		LeadID:      req.LeadID,
		CounselorID: req.CounselorID,
		Date:        date,
		StartTime:   req.Time,
		Duration:    req.Duration,
		Medium:      model.Medium(req.Medium),
		Notes:       req.Notes,
		CreatedBy:   middleware.UserID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fu)
}

type followUpPatchRequest struct {
	Status         string  `json:"status"`
	Notes          *string `json:"notes"`
	StageChangedTo string  `json:"stageChangedTo"`
	NextFollowUp   *struct {
		Date     string `json:"date"`
		Time     string `json:"time"`
		Duration int    `json:"duration"`
		Medium   string `json:"medium"`
		Notes    string `json:"notes"`
	} `json:"nextFollowUp"`
}

// UpdateFollowUp applies an outcome patch; when the patch carries
// nextFollowUp and this record is the latest in its chain, the successor
// is created in the same transaction.
func (h *Handler) UpdateFollowUp(w http.ResponseWriter, r *http.Request) {
	var req followUpPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := scheduling.FollowUpPatch{
		Status:         model.FollowUpStatus(req.Status),
		Notes:          req.Notes,
		StageChangedTo: model.LeadStage(req.StageChangedTo),
		UpdatedBy:      middleware.UserID(r.Context()),
	}
	if req.NextFollowUp != nil {
		date, err := parseDate(req.NextFollowUp.Date)
		if err != nil {
			writeErrorMsg(w, http.StatusBadRequest, "invalid nextFollowUp date")
			return
		}
		patch.Next = &scheduling.NextFollowUp{
			Date:      date,
			StartTime: req.NextFollowUp.Time,
			Duration:  req.NextFollowUp.Duration,
			Medium:    model.Medium(req.NextFollowUp.Medium),
			Notes:     req.NextFollowUp.Notes,
		}
	}

	fu, next, err := h.svc.UpdateFollowUp(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := map[string]any{"followUp": fu}
	if next != nil {
		resp["nextFollowUp"] = next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetFollowUp(w http.ResponseWriter, r *http.Request) {
	fu, err := h.store.FollowUpByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fu)
}

// ListFollowUps returns a lead's chain, ordered by sequence.
func (h *Handler) ListFollowUps(w http.ResponseWriter, r *http.Request) {
	leadID := r.URL.Query().Get("leadId")
	if leadID == "" {
		writeErrorMsg(w, http.StatusBadRequest, "leadId required")
		return
	}
	fus, err := h.store.FollowUpsByLead(r.Context(), leadID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"followUps": fus, "count": len(fus)})
}

// CheckFollowUpSlot previews whether a counselor is free for a slot.
func (h *Handler) CheckFollowUpSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := parseDate(q.Get("date"))
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}
	duration, _ := strconv.Atoi(q.Get("duration"))

	conflict, err := h.svc.CheckFollowUpSlot(r.Context(), q.Get("counselorId"), date, q.Get("time"), duration)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := map[string]any{"available": conflict == nil}
	if conflict != nil {
		resp["conflict"] = conflict
	}
	writeJSON(w, http.StatusOK, resp)
}
