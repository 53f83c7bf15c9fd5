package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"counsel-scheduling-api/internal/middleware"
	"counsel-scheduling-api/internal/model"
)

// Lead CRUD proper lives with the surrounding CRM; this minimal surface
// exists so counselors can be assigned leads to schedule against.

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	role := middleware.Role(r.Context())
	if role != string(model.RoleAdmin) && role != string(model.RoleCounselor) {
		writeErrorMsg(w, http.StatusForbidden, "not allowed to create leads")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		CounselorID string `json:"counselorId"`
		OrgID       string `json:"orgId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.CounselorID == "" {
		writeErrorMsg(w, http.StatusBadRequest, "name and counselorId required")
		return
	}

	l := &model.Lead{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Stage:       model.StageNew,
		CounselorID: req.CounselorID,
		OrgID:       req.OrgID,
	}
	if err := h.store.CreateLead(r.Context(), l); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	l, err := h.store.LeadByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
