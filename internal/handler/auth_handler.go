package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"counsel-scheduling-api/internal/auth"
	"counsel-scheduling-api/internal/model"
)

const refreshTokenTTL = 7 * 24 * time.Hour

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeErrorMsg(w, http.StatusBadRequest, "all fields required")
		return
	}
	if len(req.Password) < 8 {
		writeErrorMsg(w, http.StatusBadRequest, "password too short")
		return
	}
	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleStaff
	}
	if !role.Valid() {
		writeErrorMsg(w, http.StatusBadRequest, "unknown role")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
		return
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         role,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		// unique violation = dup email, but don't reveal that
		writeErrorMsg(w, http.StatusConflict, "registration failed")
		return
	}

	// counselors get their role-specific profile up front
	if role == model.RoleCounselor {
		c := &model.Counselor{ID: uuid.New().String(), UserID: u.ID}
		if err := h.store.CreateCounselor(r.Context(), c); err != nil {
			writeErrorMsg(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	tok, err := auth.MakeToken(u.ID, string(u.Role), h.secret)
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"userId": u.ID,
		"token":  tok,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeErrorMsg(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeErrorMsg(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tok, err := auth.MakeToken(u.ID, string(u.Role), h.secret)
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
		return
	}

	rawRefresh, tokenHash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
		return
	}
	if _, err := h.store.CreateRefreshToken(r.Context(), u.ID, tokenHash, time.Now().Add(refreshTokenTTL)); err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name: "refresh_token", Value: rawRefresh,
		HttpOnly: true, Path: "/auth/", Expires: time.Now().Add(refreshTokenTTL),
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"userId": u.ID,
		"name":   u.Name,
		"role":   string(u.Role),
		"token":  tok,
	})
}

// Refresh rotates the refresh cookie and issues a fresh access token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil || cookie.Value == "" {
		writeErrorMsg(w, http.StatusUnauthorized, "no refresh token")
		return
	}

	rt, err := h.store.GetRefreshTokenByHash(r.Context(), auth.HashRefreshToken(cookie.Value))
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		writeErrorMsg(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	u, err := h.store.UserByID(r.Context(), rt.UserID)
	if err != nil {
		writeErrorMsg(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
		return
	}
	newID := uuid.New().String()
	if err := h.store.RotateRefreshToken(r.Context(), rt.ID, newID, u.ID, newHash, time.Now().Add(refreshTokenTTL)); err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name: "refresh_token", Value: newRaw,
		HttpOnly: true, Path: "/auth/", Expires: time.Now().Add(refreshTokenTTL),
	})

	tok, err := auth.MakeToken(u.ID, string(u.Role), h.secret)
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}
