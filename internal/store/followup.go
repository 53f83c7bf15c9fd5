package store

import (
	"context"
	"time"

	"counsel-scheduling-api/internal/model"
)

const followUpColumns = `id, lead_id, counselor_id, date, start_time, duration, medium,
	status, lead_stage, COALESCE(stage_changed_to,''), sequence, notes,
	COALESCE(meeting_link,''), created_by, COALESCE(updated_by,''),
	completed_at, created_at, updated_at`

func scanFollowUp(row interface{ Scan(...any) error }) (*model.FollowUp, error) {
	fu := &model.FollowUp{}
	err := row.Scan(
		&fu.ID, &fu.LeadID, &fu.CounselorID, &fu.Date, &fu.StartTime, &fu.Duration, &fu.Medium,
		&fu.Status, &fu.LeadStage, &fu.StageChangedTo, &fu.Sequence, &fu.Notes,
		&fu.MeetingLink, &fu.CreatedBy, &fu.UpdatedBy,
		&fu.CompletedAt, &fu.CreatedAt, &fu.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return fu, nil
}

func (s *Store) CreateFollowUp(ctx context.Context, fu *model.FollowUp) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO follow_ups
		   (id, lead_id, counselor_id, date, start_time, duration, medium,
		    status, lead_stage, sequence, notes, meeting_link, created_by)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULLIF($12,''),$13)`,
		fu.ID, fu.LeadID, fu.CounselorID, fu.Date, fu.StartTime, fu.Duration, fu.Medium,
		fu.Status, fu.LeadStage, fu.Sequence, fu.Notes, fu.MeetingLink, fu.CreatedBy,
	)
	return err
}

func (s *Store) FollowUpByID(ctx context.Context, id string) (*model.FollowUp, error) {
	fu, err := scanFollowUp(s.pool.QueryRow(ctx,
		`SELECT `+followUpColumns+` FROM follow_ups WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return fu, nil
}

func (s *Store) FollowUpsByLead(ctx context.Context, leadID string) ([]model.FollowUp, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+followUpColumns+` FROM follow_ups
		 WHERE lead_id = $1 ORDER BY sequence`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FollowUp
	for rows.Next() {
		fu, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fu)
	}
	return out, rows.Err()
}

func (s *Store) CountFollowUps(ctx context.Context, leadID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM follow_ups WHERE lead_id = $1`, leadID,
	).Scan(&n)
	return n, err
}

// FollowUpsForCounselorBetween is the availability scan: every follow-up
// for the counselor inside the day bounds, in ANY status. Historical
// slots stay blocked.
func (s *Store) FollowUpsForCounselorBetween(ctx context.Context, counselorID string, from, to time.Time) ([]model.FollowUp, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+followUpColumns+` FROM follow_ups
		 WHERE counselor_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY start_time`, counselorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FollowUp
	for rows.Next() {
		fu, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fu)
	}
	return out, rows.Err()
}

// SaveFollowUpUpdate writes the patched follow-up, the optional
// successor, and the optional lead stage change in one transaction.
func (s *Store) SaveFollowUpUpdate(ctx context.Context, fu *model.FollowUp, next *model.FollowUp, stage *model.LeadStage) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE follow_ups
		 SET status=$1, notes=$2, stage_changed_to=NULLIF($3,''),
		     updated_by=NULLIF($4,''), completed_at=$5, updated_at=NOW()
		 WHERE id=$6`,
		fu.Status, fu.Notes, fu.StageChangedTo, fu.UpdatedBy, fu.CompletedAt, fu.ID,
	)
	if err != nil {
		return err
	}

	if next != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO follow_ups
			   (id, lead_id, counselor_id, date, start_time, duration, medium,
			    status, lead_stage, sequence, notes, meeting_link, created_by)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULLIF($12,''),$13)`,
			next.ID, next.LeadID, next.CounselorID, next.Date, next.StartTime, next.Duration, next.Medium,
			next.Status, next.LeadStage, next.Sequence, next.Notes, next.MeetingLink, next.CreatedBy,
		)
		if err != nil {
			return err
		}
	}

	if stage != nil {
		_, err = tx.Exec(ctx,
			`UPDATE leads SET stage=$1, updated_at=NOW() WHERE id=$2`,
			*stage, fu.LeadID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
