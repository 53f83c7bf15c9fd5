package store

import (
	"context"
	"time"

	"counsel-scheduling-api/internal/model"
)

const teamMeetColumns = `id, subject, COALESCE(description,''), date, start_time, duration,
	medium, requester_id, recipient_id, COALESCE(org_id,''), status,
	COALESCE(rejection_message,''), COALESCE(meeting_link,''),
	completed_at, created_at, updated_at`

func scanTeamMeet(row interface{ Scan(...any) error }) (*model.TeamMeet, error) {
	m := &model.TeamMeet{}
	err := row.Scan(
		&m.ID, &m.Subject, &m.Description, &m.Date, &m.StartTime, &m.Duration,
		&m.Medium, &m.RequesterID, &m.RecipientID, &m.OrgID, &m.Status,
		&m.RejectionMessage, &m.MeetingLink,
		&m.CompletedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) CreateTeamMeet(ctx context.Context, m *model.TeamMeet) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO team_meets
		   (id, subject, description, date, start_time, duration, medium,
		    requester_id, recipient_id, org_id, status, meeting_link)
		 VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,$9,NULLIF($10,''),$11,NULLIF($12,''))`,
		m.ID, m.Subject, m.Description, m.Date, m.StartTime, m.Duration, m.Medium,
		m.RequesterID, m.RecipientID, m.OrgID, m.Status, m.MeetingLink,
	)
	return err
}

func (s *Store) TeamMeetByID(ctx context.Context, id string) (*model.TeamMeet, error) {
	m, err := scanTeamMeet(s.pool.QueryRow(ctx,
		`SELECT `+teamMeetColumns+` FROM team_meets WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (s *Store) UpdateTeamMeet(ctx context.Context, m *model.TeamMeet) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE team_meets
		 SET subject=$1, description=NULLIF($2,''), date=$3, start_time=$4, duration=$5,
		     medium=$6, status=$7, rejection_message=NULLIF($8,''),
		     meeting_link=NULLIF($9,''), completed_at=$10, updated_at=NOW()
		 WHERE id=$11`,
		m.Subject, m.Description, m.Date, m.StartTime, m.Duration,
		m.Medium, m.Status, m.RejectionMessage, m.MeetingLink, m.CompletedAt, m.ID,
	)
	return err
}

// TeamMeetsForUserBetween is the availability scan: meets where the user
// sits on either side, inside the day bounds, holding one of statuses.
func (s *Store) TeamMeetsForUserBetween(ctx context.Context, userID string, from, to time.Time, statuses []model.TeamMeetStatus) ([]model.TeamMeet, error) {
	sts := make([]string, len(statuses))
	for i, st := range statuses {
		sts[i] = string(st)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+teamMeetColumns+` FROM team_meets
		 WHERE (requester_id = $1 OR recipient_id = $1)
		   AND date >= $2 AND date <= $3
		   AND status = ANY($4)
		 ORDER BY start_time`, userID, from, to, sts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamMeet
	for rows.Next() {
		m, err := scanTeamMeet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// TeamMeetsForUserOn lists a person's meets for one day, any status.
// Read endpoint, not the conflict scan.
func (s *Store) TeamMeetsForUserOn(ctx context.Context, userID string, from, to time.Time) ([]model.TeamMeet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+teamMeetColumns+` FROM team_meets
		 WHERE (requester_id = $1 OR recipient_id = $1)
		   AND date >= $2 AND date <= $3
		 ORDER BY start_time`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamMeet
	for rows.Next() {
		m, err := scanTeamMeet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
