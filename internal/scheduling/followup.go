package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/timeslot"
)

// FollowUpInput carries everything needed to schedule a follow-up.
type FollowUpInput struct {
	LeadID      string
	CounselorID string
	Date        time.Time
	StartTime   string
	Duration    int
	Medium      model.Medium
	Notes       string
	CreatedBy   string
}

// NextFollowUp is the successor slot requested through an update patch.
type NextFollowUp struct {
	Date      time.Time
	StartTime string
	Duration  int
	Medium    model.Medium
	Notes     string
}

// FollowUpPatch is a partial update. Zero values mean "leave alone";
// Notes uses a pointer so it can be cleared explicitly.
type FollowUpPatch struct {
	Status         model.FollowUpStatus
	Notes          *string
	StageChangedTo model.LeadStage
	Next           *NextFollowUp
	UpdatedBy      string
}

func (in *FollowUpInput) validate() error {
	if in.LeadID == "" {
		return &ValidationError{Field: "leadId"}
	}
	if in.CounselorID == "" {
		return &ValidationError{Field: "counselorId"}
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
	return nil
}

// ScheduleFollowUp creates the next link in a lead's chain. The
// availability check and the insert run under the counselor's slot lock
// so two racing requests for the same counselor cannot both pass.
func (s *Service) ScheduleFollowUp(ctx context.Context, in FollowUpInput) (*model.FollowUp, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c, err := s.store.CounselorByID(ctx, in.CounselorID)
	if err != nil {
		return nil, err
	}
	p, err := s.resolveParticipant(ctx, c.UserID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(c.UserID)
	defer unlock()

	lead, err := s.store.LeadByID(ctx, in.LeadID)
	if err != nil {
		return nil, err
	}

	fu, err := s.buildFollowUp(ctx, p, lead, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateFollowUp(ctx, fu); err != nil {
		return nil, fmt.Errorf("persist follow-up: %w", err)
	}
	return fu, nil
}

// buildFollowUp runs the shared create algorithm: sequence assignment,
// availability check, status derivation from the lead's stage, and the
// best-effort meeting link. Callers must hold the counselor's lock.
func (s *Service) buildFollowUp(ctx context.Context, p *participant, lead *model.Lead, in FollowUpInput) (*model.FollowUp, error) {
	count, err := s.store.CountFollowUps(ctx, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("count follow-ups: %w", err)
	}

	conflict, err := s.checkAvailability(ctx, p, in.Date, in.StartTime, in.Duration, "")
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &SlotConflictError{
			Kind:         conflict.Kind,
			Time:         conflict.Time,
			Counterparty: conflict.Counterparty,
		}
	}

	// A lead converted by the separate conversion flow can still get
	// back-scheduled follow-ups; those arrive locked, never actionable.
	status := model.FollowUpScheduled
	if lead.Stage == model.StageConverted {
		status = model.FollowUpConvertedToStudent
	}

	now := s.now()
	fu := &model.FollowUp{
		ID:          uuid.New().String(),
		LeadID:      lead.ID,
		CounselorID: in.CounselorID,
		Date:        in.Date,
		StartTime:   in.StartTime,
		Duration:    in.Duration,
		Medium:      in.Medium,
		Status:      status,
		LeadStage:   lead.Stage,
		Sequence:    count + 1,
		Notes:       in.Notes,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Medium == model.MediumVideo {
		fu.MeetingLink = s.provisionLink(ctx, "Follow-up with "+lead.Name, in.Date, in.StartTime)
	}
	return fu, nil
}

// UpdateFollowUp applies a patch to one follow-up and, when the patch
// carries a NextFollowUp and the record is the latest in its chain,
// creates the successor in the same transaction. Returns the updated
// follow-up and the successor, if one was created.
func (s *Service) UpdateFollowUp(ctx context.Context, id string, patch FollowUpPatch) (*model.FollowUp, *model.FollowUp, error) {
	fu, err := s.store.FollowUpByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.store.CounselorByID(ctx, fu.CounselorID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.resolveParticipant(ctx, c.UserID)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock(c.UserID)
	defer unlock()

	count, err := s.store.CountFollowUps(ctx, fu.LeadID)
	if err != nil {
		return nil, nil, fmt.Errorf("count follow-ups: %w", err)
	}
	locked := fu.Sequence < count
	if patch.Next != nil && locked {
		return nil, nil, ErrChainLocked
	}

	lead, err := s.store.LeadByID(ctx, fu.LeadID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if patch.Status != "" {
		if !patch.Status.Valid() {
			return nil, nil, &ValidationError{Field: "status", Msg: "unknown status"}
		}
		fu.Status = patch.Status
		if patch.Status != model.FollowUpScheduled && fu.CompletedAt == nil {
			fu.CompletedAt = &now
		}
	}
	if patch.Notes != nil {
		fu.Notes = *patch.Notes
	}

	var stage *model.LeadStage
	if patch.StageChangedTo != "" {
		if lead.Stage == model.StageConverted {
			return nil, nil, &StateError{Action: "change stage of a converted lead", From: string(lead.Stage)}
		}
		if !patch.StageChangedTo.Valid() {
			return nil, nil, &ValidationError{Field: "stageChangedTo", Msg: "unknown stage"}
		}
		fu.StageChangedTo = patch.StageChangedTo
		stg := patch.StageChangedTo
		stage = &stg
	}

	var next *model.FollowUp
	if patch.Next != nil {
		// successor status derives from the stage the lead will be in
		// after this update, not the stale stored one
		effective := *lead
		if stage != nil {
			effective.Stage = *stage
		}
		in := FollowUpInput{
			LeadID:      fu.LeadID,
			CounselorID: fu.CounselorID,
			Date:        patch.Next.Date,
			StartTime:   patch.Next.StartTime,
			Duration:    patch.Next.Duration,
			Medium:      patch.Next.Medium,
			Notes:       patch.Next.Notes,
			CreatedBy:   patch.UpdatedBy,
		}
		if err := in.validate(); err != nil {
			return nil, nil, err
		}
		next, err = s.buildFollowUp(ctx, p, &effective, in)
		if err != nil {
			return nil, nil, err
		}
	}

	fu.UpdatedBy = patch.UpdatedBy
	fu.UpdatedAt = now
	if err := s.store.SaveFollowUpUpdate(ctx, fu, next, stage); err != nil {
		return nil, nil, fmt.Errorf("persist follow-up update: %w", err)
	}
	return fu, next, nil
}
