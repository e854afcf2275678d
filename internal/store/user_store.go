package store

import (
	"context"

	"chatpay/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// Upsert creates the user on first contact and refreshes the profile
// snapshot fields afterwards. Login, phone, role and the registered flag
// are never touched here.
func (s *UserStore) Upsert(ctx context.Context, p models.Profile) error {
	fullName := p.FirstName
	if fullName != "" && p.LastName != "" {
		fullName += " "
	}
	fullName += p.LastName
	query := `
		INSERT INTO users (id, handle, full_name, language, is_premium, is_bot)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			handle = NULLIF($2, ''),
			full_name = $3,
			language = NULLIF($4, ''),
			is_premium = $5,
			is_bot = $6,
			updated_at = now()
	`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Handle, fullName, p.Language, p.IsPremium, p.IsBot)
	return err
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, login, handle, full_name, phone, language, is_premium, is_bot, registered, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return user, err
}

func (s *UserStore) Search(ctx context.Context, query string, excludeID int64, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, login, handle, full_name, phone, language, is_premium, is_bot, registered, role, created_at, updated_at
		FROM users
		WHERE id <> $1
		  AND (login ILIKE $2 OR handle ILIKE $2 OR phone ILIKE $2)
		ORDER BY login NULLS LAST
		LIMIT $3
	`, excludeID, pattern, limit)
	return users, err
}

func (s *UserStore) UpdateLogin(ctx context.Context, id int64, login string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET login = $1, updated_at = now() WHERE id = $2`, login, id)
	return err
}

func (s *UserStore) UpdatePhone(ctx context.Context, id int64, phone string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET phone = $1, updated_at = now() WHERE id = $2`, phone, id)
	return err
}

func (s *UserStore) MarkRegistered(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET registered = true, updated_at = now() WHERE id = $1`, id)
	return err
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}
