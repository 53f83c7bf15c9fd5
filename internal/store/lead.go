package store

import (
	"context"

	"counsel-scheduling-api/internal/model"
)

func (s *Store) CreateLead(ctx context.Context, l *model.Lead) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, name, email, phone, stage, counselor_id, org_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		l.ID, l.Name, l.Email, l.Phone, l.Stage, l.CounselorID, l.OrgID,
	)
	return err
}

func (s *Store) LeadByID(ctx context.Context, id string) (*model.Lead, error) {
	l := &model.Lead{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, stage, counselor_id, org_id, created_at, updated_at
		 FROM leads WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Stage, &l.CounselorID, &l.OrgID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (s *Store) UpdateLeadStage(ctx context.Context, id string, stage model.LeadStage) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE leads SET stage = $1, updated_at = NOW() WHERE id = $2`,
		stage, id,
	)
	return err
}
