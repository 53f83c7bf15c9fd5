package scheduling

import (
	"context"
	"fmt"
	"time"

	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/timeslot"
)

// blockingTeamMeetStatuses are the statuses that still hold a slot.
// Rejected and cancelled meets free theirs. Completed meets keep
// blocking forever: the historical record stays collision-free.
var blockingTeamMeetStatuses = []model.TeamMeetStatus{
	model.TeamMeetPending,
	model.TeamMeetConfirmed,
	model.TeamMeetCompleted,
}

// Conflict describes the first record found holding the requested slot.
type Conflict struct {
	Kind         model.AppointmentKind `json:"kind"`
	Time         string                `json:"time"`
	Counterparty string                `json:"counterparty"`
}

// checkAvailability scans the person's calendar for the given day and
// returns the first conflicting record, or nil when the slot is free.
// excludeID skips one record, used when rescheduling out of its own slot.
//
// Team meets are filtered by status; follow-ups are deliberately not:
// a follow-up in any status, completed or missed included, still blocks
// its original slot because it is permanent evidence of who was where.
func (s *Service) checkAvailability(ctx context.Context, p *participant, date time.Time, startTime string, duration int, excludeID string) (*Conflict, error) {
	startMins, err := timeslot.ToMinutes(startTime)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := timeslot.DayBounds(date)

	meets, err := s.store.TeamMeetsForUserBetween(ctx, p.UserID, dayStart, dayEnd, blockingTeamMeetStatuses)
	if err != nil {
		return nil, fmt.Errorf("scan team meets: %w", err)
	}
	for i := range meets {
		m := &meets[i]
		if m.ID == excludeID {
			continue
		}
		mStart, err := timeslot.ToMinutes(m.StartTime)
		if err != nil {
			continue // unreadable stored time cannot be compared
		}
		if timeslot.Overlaps(startMins, duration, mStart, m.Duration) {
			return &Conflict{
				Kind:         model.KindTeamMeet,
				Time:         m.StartTime,
				Counterparty: s.teamMeetCounterparty(ctx, m, p.UserID),
			}, nil
		}
	}

	if p.Role != model.RoleCounselor || p.CounselorID == "" {
		return nil, nil
	}

	// no status filter here, on purpose
	fus, err := s.store.FollowUpsForCounselorBetween(ctx, p.CounselorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("scan follow-ups: %w", err)
	}
	for i := range fus {
		fu := &fus[i]
		if fu.ID == excludeID {
			continue
		}
		fuStart, err := timeslot.ToMinutes(fu.StartTime)
		if err != nil {
			continue
		}
		if timeslot.Overlaps(startMins, duration, fuStart, fu.Duration) {
			return &Conflict{
				Kind:         model.KindFollowUp,
				Time:         fu.StartTime,
				Counterparty: s.leadName(ctx, fu.LeadID),
			}, nil
		}
	}

	return nil, nil
}

func (s *Service) teamMeetCounterparty(ctx context.Context, m *model.TeamMeet, fromUserID string) string {
	otherID := m.RequesterID
	if otherID == fromUserID {
		otherID = m.RecipientID
	}
	if u, err := s.store.UserByID(ctx, otherID); err == nil {
		return u.Name
	}
	return otherID
}

func (s *Service) leadName(ctx context.Context, leadID string) string {
	if l, err := s.store.LeadByID(ctx, leadID); err == nil {
		return l.Name
	}
	return leadID
}

// CheckFollowUpSlot answers whether a counselor is free for the slot.
// Read-only preview; the authoritative check reruns under lock at
// creation time.
func (s *Service) CheckFollowUpSlot(ctx context.Context, counselorID string, date time.Time, startTime string, duration int) (*Conflict, error) {
	if !model.ValidDuration(duration) {
		return nil, ErrInvalidDuration
	}
	c, err := s.store.CounselorByID(ctx, counselorID)
	if err != nil {
		return nil, err
	}
	p, err := s.resolveParticipant(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	return s.checkAvailability(ctx, p, date, startTime, duration, "")
}

// SlotCheck is the two-party availability report for a team meet.
type SlotCheck struct {
	RequesterAvailable bool       `json:"requesterAvailable"`
	RecipientAvailable bool       `json:"recipientAvailable"`
	Conflicts          []Conflict `json:"conflicts"`
}

// CheckTeamMeetSlot checks both parties and reports each side, unlike
// the write path which fails on the first blocked side.
func (s *Service) CheckTeamMeetSlot(ctx context.Context, requesterID, recipientID string, date time.Time, startTime string, duration int) (*SlotCheck, error) {
	if !model.ValidDuration(duration) {
		return nil, ErrInvalidDuration
	}
	req, err := s.resolveParticipant(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	rec, err := s.resolveParticipant(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	out := &SlotCheck{RequesterAvailable: true, RecipientAvailable: true}
	if c, err := s.checkAvailability(ctx, req, date, startTime, duration, ""); err != nil {
		return nil, err
	} else if c != nil {
		out.RequesterAvailable = false
		out.Conflicts = append(out.Conflicts, *c)
	}
	if c, err := s.checkAvailability(ctx, rec, date, startTime, duration, ""); err != nil {
		return nil, err
	} else if c != nil {
		out.RecipientAvailable = false
		out.Conflicts = append(out.Conflicts, *c)
	}
	return out, nil
}
