package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/timeslot"
)

// TeamMeetInput carries everything needed to request a staff meeting.
type TeamMeetInput struct {
	Subject     string
	Description string
	Date        time.Time
	StartTime   string
	Duration    int
	Medium      model.Medium
	RequesterID string
	RecipientID string
	OrgID       string
}

func (in *TeamMeetInput) validate() error {
	if in.Subject == "" {
		return &ValidationError{Field: "subject"}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date"}
	}
	if _, err := timeslot.ToMinutes(in.StartTime); err != nil {
		return err
	}
	if !model.ValidDuration(in.Duration) {
		return ErrInvalidDuration
	}
	if !in.Medium.Valid() {
		return &ValidationError{Field: "medium", Msg: "unknown meeting medium"}
	}
	if in.RecipientID == "" {
		return &ValidationError{Field: "recipientId"}
	}
	if in.RequesterID == in.RecipientID {
		return &ValidationError{Field: "recipientId", Msg: "cannot request a meeting with yourself"}
	}
	return nil
}

// CreateTeamMeet requests a meeting between two staff members. Both
// calendars must clear the availability check; the first blocked side
// fails the request, naming which party is blocked.
func (s *Service) CreateTeamMeet(ctx context.Context, in TeamMeetInput) (*model.TeamMeet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	req, err := s.resolveParticipant(ctx, in.RequesterID)
	if err != nil {
		return nil, err
	}
	rec, err := s.resolveParticipant(ctx, in.RecipientID)
	if err != nil {
		return nil, err
	}
	if rec.Role != model.RoleAdmin && rec.Role != model.RoleCounselor {
		return nil, &ValidationError{Field: "recipientId", Msg: "recipient must be an admin or counselor"}
	}

	unlock := s.locks.Lock(req.UserID, rec.UserID)
	defer unlock()

	if err := s.clearBothParties(ctx, req, rec, in.Date, in.StartTime, in.Duration, ""); err != nil {
		return nil, err
	}

	now := s.now()
	m := &model.TeamMeet{
		ID:          uuid.New().String(),
		Subject:     in.Subject,
		Description: in.Description,
		Date:        in.Date,
		StartTime:   in.StartTime,
		Duration:    in.Duration,
		Medium:      in.Medium,
		RequesterID: in.RequesterID,
		RecipientID: in.RecipientID,
		OrgID:       in.OrgID,
		Status:      model.TeamMeetPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Medium == model.MediumVideo {
		m.MeetingLink = s.provisionLink(ctx, in.Subject, in.Date, in.StartTime)
	}
	if err := s.store.CreateTeamMeet(ctx, m); err != nil {
		return nil, fmt.Errorf("persist team meet: %w", err)
	}
	return m, nil
}

func (s *Service) clearBothParties(ctx context.Context, req, rec *participant, date time.Time, startTime string, duration int, excludeID string) error {
	for _, p := range []*participant{req, rec} {
		conflict, err := s.checkAvailability(ctx, p, date, startTime, duration, excludeID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &SlotConflictError{
				Kind:         conflict.Kind,
				Time:         conflict.Time,
				Counterparty: conflict.Counterparty,
				Party:        p.Name,
			}
		}
	}
	return nil
}

// AcceptTeamMeet confirms a pending meeting. Recipient only.
func (s *Service) AcceptTeamMeet(ctx context.Context, id, actorID string) (*model.TeamMeet, error) {
	m, err := s.store.TeamMeetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.RecipientID != actorID {
		return nil, &AuthorizationError{Action: "accept this team meet"}
	}
	if m.Status != model.TeamMeetPending {
		return nil, &StateError{Action: "accept", From: string(m.Status)}
	}
	m.Status = model.TeamMeetConfirmed
	m.UpdatedAt = s.now()
	if err := s.store.UpdateTeamMeet(ctx, m); err != nil {
		return nil, fmt.Errorf("persist team meet: %w", err)
	}
	return m, nil
}

// RejectTeamMeet declines a pending meeting with a reason. Recipient only.
func (s *Service) RejectTeamMeet(ctx context.Context, id, actorID, reason string) (*model.TeamMeet, error) {
	m, err := s.store.TeamMeetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.RecipientID != actorID {
		return nil, &AuthorizationError{Action: "reject this team meet"}
	}
	if m.Status != model.TeamMeetPending {
		return nil, &StateError{Action: "reject", From: string(m.Status)}
	}
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Msg: "rejection needs a message"}
	}
	m.Status = model.TeamMeetRejected
	m.RejectionMessage = reason
	m.UpdatedAt = s.now()
	if err := s.store.UpdateTeamMeet(ctx, m); err != nil {
		return nil, fmt.Errorf("persist team meet: %w", err)
	}
	return m, nil
}

// CancelTeamMeet withdraws a pending or confirmed meeting. Requester only.
func (s *Service) CancelTeamMeet(ctx context.Context, id, actorID string) (*model.TeamMeet, error) {
	m, err := s.store.TeamMeetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.RequesterID != actorID {
		return nil, &AuthorizationError{Action: "cancel this team meet"}
	}
	if m.Status != model.TeamMeetPending && m.Status != model.TeamMeetConfirmed {
		return nil, &StateError{Action: "cancel", From: string(m.Status)}
	}
	m.Status = model.TeamMeetCancelled
	m.UpdatedAt = s.now()
	if err := s.store.UpdateTeamMeet(ctx, m); err != nil {
		return nil, fmt.Errorf("persist team meet: %w", err)
	}
	return m, nil
}

// RescheduleTeamMeet moves a rejected or still-pending meeting to a new
// slot. Requester only. The dual availability check runs again with the
// meeting's own prior slot excluded, then status resets to pending and
// any rejection message is cleared.
func (s *Service) RescheduleTeamMeet(ctx context.Context, id, actorID string, date time.Time, startTime string, duration int) (*model.TeamMeet, error) {
	m, err := s.store.TeamMeetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.RequesterID != actorID {
		return nil, &AuthorizationError{Action: "reschedule this team meet"}
	}
	if m.Status != model.TeamMeetRejected && m.Status != model.TeamMeetPending {
		return nil, &StateError{Action: "reschedule", From: string(m.Status)}
	}
	if date.IsZero() {
		return nil, &ValidationError{Field: "date"}
	}
	if _, err := timeslot.ToMinutes(startTime); err != nil {
		return nil, err
	}
	if !model.ValidDuration(duration) {
		return nil, ErrInvalidDuration
	}

	req, err := s.resolveParticipant(ctx, m.RequesterID)
	if err != nil {
		return nil, err
	}
	rec, err := s.resolveParticipant(ctx, m.RecipientID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.UserID, rec.UserID)
	defer unlock()

	if err := s.clearBothParties(ctx, req, rec, date, startTime, duration, m.ID); err != nil {
		return nil, err
	}

	m.Date = date
	m.StartTime = startTime
	m.Duration = duration
	m.Status = model.TeamMeetPending
	m.RejectionMessage = ""
	m.UpdatedAt = s.now()
	if err := s.store.UpdateTeamMeet(ctx, m); err != nil {
		return nil, fmt.Errorf("persist team meet: %w", err)
	}
	return m, nil
}

// CompleteTeamMeet marks a confirmed meeting as held. Either party.
func (s *Service) CompleteTeamMeet(ctx context.Context, id, actorID string) (*model.TeamMeet, error) {
	m, err := s.store.TeamMeetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.RequesterID != actorID && m.RecipientID != actorID {
		return nil, &AuthorizationError{Action: "complete this team meet"}
	}
	if m.Status != model.TeamMeetConfirmed {
		return nil, &StateError{Action: "complete", From: string(m.Status)}
	}
	now := s.now()
	m.Status = model.TeamMeetCompleted
	m.CompletedAt = &now
	m.UpdatedAt = now
	if err := s.store.UpdateTeamMeet(ctx, m); err != nil {
		return nil, fmt.Errorf("persist team meet: %w", err)
	}
	return m, nil
}
