// Package scheduling owns appointment scheduling with cross-resource
// conflict detection: the shared availability checker, the per-lead
// follow-up chain, and the team-meet lifecycle. Handlers stay thin and
// call into here; persistence goes through the Store interface.
package scheduling

import (
	"context"
	"errors"
	"log"
	"time"

	"counsel-scheduling-api/internal/model"
)

// Store is the persistence surface the scheduler needs. The pgx store
// implements it; tests use an in-memory fake. Implementations return
// ErrNotFound for missing rows and wrap infrastructure failures.
type Store interface {
	UserByID(ctx context.Context, id string) (*model.User, error)
	CounselorByID(ctx context.Context, id string) (*model.Counselor, error)
	CounselorByUser(ctx context.Context, userID string) (*model.Counselor, error)

	LeadByID(ctx context.Context, id string) (*model.Lead, error)

	CreateFollowUp(ctx context.Context, fu *model.FollowUp) error
	FollowUpByID(ctx context.Context, id string) (*model.FollowUp, error)
	FollowUpsByLead(ctx context.Context, leadID string) ([]model.FollowUp, error)
	CountFollowUps(ctx context.Context, leadID string) (int, error)
	// FollowUpsForCounselorBetween returns every follow-up for the
	// counselor inside [from, to], regardless of status.
	FollowUpsForCounselorBetween(ctx context.Context, counselorID string, from, to time.Time) ([]model.FollowUp, error)
	// SaveFollowUpUpdate applies an update atomically: the patched
	// follow-up, an optional successor insert, and an optional lead
	// stage change all commit or none do.
	SaveFollowUpUpdate(ctx context.Context, fu *model.FollowUp, next *model.FollowUp, stage *model.LeadStage) error

	CreateTeamMeet(ctx context.Context, m *model.TeamMeet) error
	TeamMeetByID(ctx context.Context, id string) (*model.TeamMeet, error)
	UpdateTeamMeet(ctx context.Context, m *model.TeamMeet) error
	// TeamMeetsForUserBetween returns team meets where the user is
	// requester or recipient inside [from, to], filtered to statuses.
	TeamMeetsForUserBetween(ctx context.Context, userID string, from, to time.Time, statuses []model.TeamMeetStatus) ([]model.TeamMeet, error)
}

// MeetLinker provisions a join URL once a slot is confirmed free.
// Failures are logged and swallowed; scheduling never fails on it.
type MeetLinker interface {
	Provision(ctx context.Context, subject string, date time.Time, startTime string) (string, error)
}

type Service struct {
	store Store
	links MeetLinker // may be nil
	locks *keyedMutex
	now   func() time.Time
}

func New(st Store, links MeetLinker) *Service {
	return &Service{
		store: st,
		links: links,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// participant is a person with their role resolved once at entry,
// plus the counselor profile id when the role carries one.
type participant struct {
	UserID      string
	Name        string
	Role        model.Role
	CounselorID string
}

func (s *Service) resolveParticipant(ctx context.Context, userID string) (*participant, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &participant{UserID: u.ID, Name: u.Name, Role: u.Role}
	if u.Role == model.RoleCounselor {
		c, err := s.store.CounselorByUser(ctx, u.ID)
		if err == nil {
			p.CounselorID = c.ID
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return p, nil
}

// provisionLink asks the external provider for a join URL. Best effort:
// the appointment is still created without a link when it fails.
func (s *Service) provisionLink(ctx context.Context, subject string, date time.Time, startTime string) string {
	if s.links == nil {
		return ""
	}
	url, err := s.links.Provision(ctx, subject, date, startTime)
	if err != nil {
		log.Printf("meetlink: provisioning failed, continuing without link: %v", err)
		return ""
	}
	return url
}
