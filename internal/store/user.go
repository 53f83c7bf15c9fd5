package store

import (
	"context"

	"counsel-scheduling-api/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role) VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role,
	)
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, role, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, role, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) CreateCounselor(ctx context.Context, c *model.Counselor) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO counselors (id, user_id) VALUES ($1,$2)`,
		c.ID, c.UserID,
	)
	return err
}

func (s *Store) CounselorByID(ctx context.Context, id string) (*model.Counselor, error) {
	c := &model.Counselor{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at FROM counselors WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *Store) CounselorByUser(ctx context.Context, userID string) (*model.Counselor, error) {
	c := &model.Counselor{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at FROM counselors WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}
