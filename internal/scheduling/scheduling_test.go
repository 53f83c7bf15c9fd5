package scheduling_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/scheduling"
)

var ctx = context.Background()

func newService() (*scheduling.Service, *memStore) {
	st := newMemStore()
	return scheduling.New(st, nil), st
}

func addUser(st *memStore, name string, role model.Role) string {
	id := uuid.New().String()
	st.users[id] = &model.User{
		ID: id, Email: name + "@test.com", Name: name, Role: role,
	}
	return id
}

// addCounselor registers a counselor user plus their profile and
// returns (userID, counselorID).
func addCounselor(st *memStore, name string) (string, string) {
	uid := addUser(st, name, model.RoleCounselor)
	cid := uuid.New().String()
	st.counselors[cid] = &model.Counselor{ID: cid, UserID: uid}
	return uid, cid
}

func addLead(st *memStore, counselorID, name string, stage model.LeadStage) string {
	id := uuid.New().String()
	st.leads[id] = &model.Lead{
		ID: id, Name: name, Stage: stage, CounselorID: counselorID,
	}
	return id
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func followUpInput(leadID, counselorID string, date time.Time, at string, dur int) scheduling.FollowUpInput {
	return scheduling.FollowUpInput{
		LeadID:      leadID,
		CounselorID: counselorID,
		Date:        date,
		StartTime:   at,
		Duration:    dur,
		Medium:      model.MediumPhone,
		CreatedBy:   "test",
	}
}

func teamMeetInput(requesterID, recipientID string, date time.Time, at string, dur int) scheduling.TeamMeetInput {
	return scheduling.TeamMeetInput{
		Subject:     "sync",
		Date:        date,
		StartTime:   at,
		Duration:    dur,
		Medium:      model.MediumPhone,
		RequesterID: requesterID,
		RecipientID: recipientID,
	}
}

func mustScheduleFollowUp(t *testing.T, svc *scheduling.Service, in scheduling.FollowUpInput) *model.FollowUp {
	t.Helper()
	fu, err := svc.ScheduleFollowUp(ctx, in)
	if err != nil {
		t.Fatalf("schedule follow-up: %v", err)
	}
	return fu
}

func mustCreateTeamMeet(t *testing.T, svc *scheduling.Service, in scheduling.TeamMeetInput) *model.TeamMeet {
	t.Helper()
	m, err := svc.CreateTeamMeet(ctx, in)
	if err != nil {
		t.Fatalf("create team meet: %v", err)
	}
	return m
}
