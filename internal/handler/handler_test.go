package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"counsel-scheduling-api/internal/handler"
	"counsel-scheduling-api/internal/middleware"
	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/scheduling"
	"counsel-scheduling-api/internal/store"
)

// setup wires the full HTTP stack against a real database. Tests skip
// when no database is configured, so the suite stays runnable anywhere.
func setup(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	secret := os.Getenv("JWT_SECRET")
	if dbURL == "" || secret == "" {
		t.Skip("DATABASE_URL or JWT_SECRET not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)
	if migration, err := os.ReadFile("../../db/migrations/001_init.sql"); err == nil {
		pool.Exec(context.Background(), string(migration))
	}

	st := store.New(pool)
	svc := scheduling.New(st, nil)
	h := handler.New(svc, st, secret)
	return router(h, secret), st
}

// router mirrors the wiring in cmd/server, minus rate limiting.
func router(h *handler.Handler, secret string) http.Handler {
	authed := middleware.Auth(secret)
	mux := http.NewServeMux()

	mux.Handle("POST /auth/register", http.HandlerFunc(h.Register))
	mux.Handle("POST /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("POST /auth/refresh", http.HandlerFunc(h.Refresh))

	mux.Handle("POST /v1/leads", authed(http.HandlerFunc(h.CreateLead)))
	mux.Handle("GET /v1/leads/{id}", authed(http.HandlerFunc(h.GetLead)))

	mux.Handle("POST /v1/followups", authed(http.HandlerFunc(h.ScheduleFollowUp)))
	mux.Handle("PATCH /v1/followups/{id}", authed(http.HandlerFunc(h.UpdateFollowUp)))
	mux.Handle("GET /v1/followups/{id}", authed(http.HandlerFunc(h.GetFollowUp)))
	mux.Handle("GET /v1/followups", authed(http.HandlerFunc(h.ListFollowUps)))

	mux.Handle("POST /v1/team-meets", authed(http.HandlerFunc(h.CreateTeamMeet)))
	mux.Handle("GET /v1/team-meets/{id}", authed(http.HandlerFunc(h.GetTeamMeet)))
	mux.Handle("POST /v1/team-meets/{id}/accept", authed(http.HandlerFunc(h.AcceptTeamMeet)))
	mux.Handle("POST /v1/team-meets/{id}/reject", authed(http.HandlerFunc(h.RejectTeamMeet)))
	mux.Handle("POST /v1/team-meets/{id}/reschedule", authed(http.HandlerFunc(h.RescheduleTeamMeet)))

	mux.Handle("GET /v1/availability/followup", authed(http.HandlerFunc(h.CheckFollowUpSlot)))
	mux.Handle("GET /v1/schedule.ics", authed(http.HandlerFunc(h.Schedule)))

	return mux
}

func doJSON(t *testing.T, mux http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// registerUser creates a user via the API and returns (userID, token).
func registerUser(t *testing.T, mux http.Handler, role model.Role) (string, string) {
	t.Helper()
	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	rec := doJSON(t, mux, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Test " + string(role),
		"role":     string(role),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	out := decode[map[string]string](t, rec)
	return out["userId"], out["token"]
}

func createLead(t *testing.T, mux http.Handler, token, counselorID string) string {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/v1/leads", token, map[string]string{
		"name":        "Lead " + uuid.New().String()[:8],
		"counselorId": counselorID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create lead: %d %s", rec.Code, rec.Body.String())
	}
	return decode[model.Lead](t, rec).ID
}

func TestRegisterAndLogin(t *testing.T) {
	mux, _ := setup(t)

	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	rec := doJSON(t, mux, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": "Login Test", "role": "counselor",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	out := decode[map[string]string](t, rec)
	if out["token"] == "" || out["role"] != "counselor" {
		t.Errorf("login response: %v", out)
	}

	rec = doJSON(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	mux, _ := setup(t)

	rec := doJSON(t, mux, http.MethodGet, "/v1/followups?leadId=x", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d, want 401", rec.Code)
	}
	rec = doJSON(t, mux, http.MethodGet, "/v1/followups?leadId=x", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: %d, want 401", rec.Code)
	}
}

func TestFollowUpLifecycle(t *testing.T) {
	mux, st := setup(t)

	uid, token := registerUser(t, mux, model.RoleCounselor)
	c, err := st.CounselorByUser(context.Background(), uid)
	if err != nil {
		t.Fatalf("counselor profile: %v", err)
	}
	leadID := createLead(t, mux, token, c.ID)

	book := map[string]any{
		"leadId": leadID, "counselorId": c.ID,
		"date": "2030-06-03", "time": "09:30", "duration": 30, "medium": "phone",
	}
	rec := doJSON(t, mux, http.MethodPost, "/v1/followups", token, book)
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule: %d %s", rec.Code, rec.Body.String())
	}
	fu := decode[model.FollowUp](t, rec)
	if fu.Sequence != 1 || fu.Status != model.FollowUpScheduled {
		t.Errorf("first link: seq=%d status=%s", fu.Sequence, fu.Status)
	}

	// same counselor, overlapping slot, different lead
	otherLead := createLead(t, mux, token, c.ID)
	book["leadId"] = otherLead
	book["time"] = "09:45"
	rec = doJSON(t, mux, http.MethodPost, "/v1/followups", token, book)
	if rec.Code != http.StatusConflict {
		t.Fatalf("overlap: %d %s", rec.Code, rec.Body.String())
	}

	// record the outcome and chain the next link in one call
	patch := map[string]any{
		"status":         "completed",
		"stageChangedTo": "interested",
		"nextFollowUp": map[string]any{
			"date": "2030-06-10", "time": "09:30", "duration": 30, "medium": "phone",
		},
	}
	rec = doJSON(t, mux, http.MethodPatch, "/v1/followups/"+fu.ID, token, patch)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	out := decode[struct {
		FollowUp     model.FollowUp  `json:"followUp"`
		NextFollowUp *model.FollowUp `json:"nextFollowUp"`
	}](t, rec)
	if out.FollowUp.Status != model.FollowUpCompleted || out.FollowUp.CompletedAt == nil {
		t.Errorf("outcome not recorded: %+v", out.FollowUp)
	}
	if out.NextFollowUp == nil || out.NextFollowUp.Sequence != 2 {
		t.Fatalf("successor missing: %+v", out.NextFollowUp)
	}

	// the first link is now locked
	rec = doJSON(t, mux, http.MethodPatch, "/v1/followups/"+fu.ID, token, map[string]any{
		"status":       "no_show",
		"nextFollowUp": map[string]any{"date": "2030-06-17", "time": "09:30", "duration": 30, "medium": "phone"},
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("locked link extend: %d %s", rec.Code, rec.Body.String())
	}

	// chain listing comes back in sequence order
	rec = doJSON(t, mux, http.MethodGet, "/v1/followups?leadId="+leadID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	chain := decode[struct {
		FollowUps []model.FollowUp `json:"followUps"`
		Count     int              `json:"count"`
	}](t, rec)
	if chain.Count != 2 || chain.FollowUps[0].Sequence != 1 || chain.FollowUps[1].Sequence != 2 {
		t.Errorf("chain: %+v", chain)
	}
}

func TestStaffCannotScheduleFollowUps(t *testing.T) {
	mux, _ := setup(t)

	_, token := registerUser(t, mux, model.RoleStaff)
	rec := doJSON(t, mux, http.MethodPost, "/v1/followups", token, map[string]any{
		"leadId": "x", "counselorId": "y",
		"date": "2030-06-03", "time": "09:30", "duration": 30, "medium": "phone",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("staff schedule: %d, want 403", rec.Code)
	}
}

func TestTeamMeetLifecycle(t *testing.T) {
	mux, _ := setup(t)

	_, reqToken := registerUser(t, mux, model.RoleAdmin)
	recipientID, recToken := registerUser(t, mux, model.RoleCounselor)
	_, outsiderToken := registerUser(t, mux, model.RoleStaff)

	rec := doJSON(t, mux, http.MethodPost, "/v1/team-meets", reqToken, map[string]any{
		"subject": "pipeline review", "recipientId": recipientID,
		"date": "2030-07-01", "time": "14:00", "duration": 45, "medium": "in_person",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	m := decode[model.TeamMeet](t, rec)
	if m.Status != model.TeamMeetPending {
		t.Errorf("status = %s", m.Status)
	}

	// outsiders can't even see it
	rec = doJSON(t, mux, http.MethodGet, "/v1/team-meets/"+m.ID, outsiderToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("outsider view: %d, want 404", rec.Code)
	}

	// requester cannot accept their own request
	rec = doJSON(t, mux, http.MethodPost, "/v1/team-meets/"+m.ID+"/accept", reqToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("requester accept: %d, want 403", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/v1/team-meets/"+m.ID+"/reject", recToken, map[string]string{"reason": "busy"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reject: %d %s", rec.Code, rec.Body.String())
	}
	m = decode[model.TeamMeet](t, rec)
	if m.Status != model.TeamMeetRejected || m.RejectionMessage != "busy" {
		t.Errorf("after reject: %+v", m)
	}

	rec = doJSON(t, mux, http.MethodPost, "/v1/team-meets/"+m.ID+"/reschedule", reqToken, map[string]any{
		"date": "2030-07-02", "time": "14:00", "duration": 45,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reschedule: %d %s", rec.Code, rec.Body.String())
	}
	m = decode[model.TeamMeet](t, rec)
	if m.Status != model.TeamMeetPending || m.RejectionMessage != "" {
		t.Errorf("after reschedule: %+v", m)
	}

	rec = doJSON(t, mux, http.MethodPost, "/v1/team-meets/"+m.ID+"/accept", recToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	if decode[model.TeamMeet](t, rec).Status != model.TeamMeetConfirmed {
		t.Error("accept did not confirm")
	}
}

func TestFollowUpBlocksTeamMeetSlot(t *testing.T) {
	mux, st := setup(t)

	_, adminToken := registerUser(t, mux, model.RoleAdmin)
	counselorUID, counselorToken := registerUser(t, mux, model.RoleCounselor)
	c, err := st.CounselorByUser(context.Background(), counselorUID)
	if err != nil {
		t.Fatalf("counselor profile: %v", err)
	}
	leadID := createLead(t, mux, counselorToken, c.ID)

	rec := doJSON(t, mux, http.MethodPost, "/v1/followups", counselorToken, map[string]any{
		"leadId": leadID, "counselorId": c.ID,
		"date": "2030-08-05", "time": "11:00", "duration": 60, "medium": "phone",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule: %d %s", rec.Code, rec.Body.String())
	}

	// a team meet with the same counselor over that hour must 409
	rec = doJSON(t, mux, http.MethodPost, "/v1/team-meets", adminToken, map[string]any{
		"subject": "sync", "recipientId": counselorUID,
		"date": "2030-08-05", "time": "11:30", "duration": 30, "medium": "phone",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("cross-kind conflict: %d %s", rec.Code, rec.Body.String())
	}
	conflict := decode[struct {
		Conflict struct {
			Kind model.AppointmentKind `json:"kind"`
		} `json:"conflict"`
	}](t, rec)
	if conflict.Conflict.Kind != model.KindFollowUp {
		t.Errorf("conflict kind = %s", conflict.Conflict.Kind)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	mux, st := setup(t)

	uid, token := registerUser(t, mux, model.RoleCounselor)
	c, err := st.CounselorByUser(context.Background(), uid)
	if err != nil {
		t.Fatalf("counselor profile: %v", err)
	}

	path := fmt.Sprintf("/v1/availability/followup?counselorId=%s&date=2030-09-02&time=10:00&duration=30", c.ID)
	rec := doJSON(t, mux, http.MethodGet, path, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("check: %d %s", rec.Code, rec.Body.String())
	}
	out := decode[struct {
		Available bool `json:"available"`
	}](t, rec)
	if !out.Available {
		t.Error("fresh counselor should be free")
	}
}

func TestScheduleICS(t *testing.T) {
	mux, st := setup(t)

	uid, token := registerUser(t, mux, model.RoleCounselor)
	c, err := st.CounselorByUser(context.Background(), uid)
	if err != nil {
		t.Fatalf("counselor profile: %v", err)
	}
	leadID := createLead(t, mux, token, c.ID)

	rec := doJSON(t, mux, http.MethodPost, "/v1/followups", token, map[string]any{
		"leadId": leadID, "counselorId": c.ID,
		"date": "2030-10-07", "time": "09:00", "duration": 30, "medium": "phone",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodGet, "/v1/schedule.ics?date=2030-10-07", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ics: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type = %q", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "BEGIN:VEVENT") {
		t.Errorf("feed missing calendar markers:\n%s", body)
	}
}
