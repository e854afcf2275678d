package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"chatpay/internal/models"
	"chatpay/internal/store"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrLoginTaken   = errors.New("login already taken")
)

type UserStore interface {
	Upsert(ctx context.Context, p models.Profile) error
	GetByID(ctx context.Context, id int64) (models.User, error)
	Search(ctx context.Context, query string, excludeID int64, limit int) ([]models.User, error)
	UpdateLogin(ctx context.Context, id int64, login string) error
	UpdatePhone(ctx context.Context, id int64, phone string) error
	MarkRegistered(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type TransferStats interface {
	StatsForSender(ctx context.Context, senderID int64) (store.StatsRow, error)
	StatsForRecipient(ctx context.Context, recipientID int64) (store.StatsRow, error)
	StatsGlobal(ctx context.Context) (store.StatsRow, error)
}

type UserService struct {
	users UserStore
	stats TransferStats
}

func NewUserService(users UserStore, stats TransferStats) *UserService {
	return &UserService{users: users, stats: stats}
}

// UpsertProfile refreshes the identity snapshot and returns the stored user.
func (s *UserService) UpsertProfile(ctx context.Context, p models.Profile) (models.User, error) {
	if err := s.users.Upsert(ctx, p); err != nil {
		return models.User{}, err
	}
	return s.users.GetByID(ctx, p.ID)
}

func (s *UserService) Get(ctx context.Context, id int64) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) Search(ctx context.Context, query string, excludeID int64) ([]models.User, error) {
	return s.users.Search(ctx, query, excludeID, 10)
}

func (s *UserService) SetLogin(ctx context.Context, id int64, login string) error {
	if err := s.users.UpdateLogin(ctx, id, login); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrLoginTaken
		}
		return err
	}
	return nil
}

func (s *UserService) SetPhone(ctx context.Context, id int64, phone string) error {
	return s.users.UpdatePhone(ctx, id, phone)
}

func (s *UserService) CompleteRegistration(ctx context.Context, id int64) error {
	return s.users.MarkRegistered(ctx, id)
}

// Stats aggregates payment figures for one user. Admins see the global
// picture plus the user count.
type Stats struct {
	Payments        int64
	TotalMinor      int64
	LastAmountMinor *int64
	LastAt          *time.Time
	TotalUsers      *int64
}

func (s *UserService) Stats(ctx context.Context, user models.User) (Stats, error) {
	var row store.StatsRow
	var err error
	switch user.Role {
	case models.RoleAdmin:
		row, err = s.stats.StatsGlobal(ctx)
	case models.RoleSender:
		row, err = s.stats.StatsForSender(ctx, user.ID)
	default:
		row, err = s.stats.StatsForRecipient(ctx, user.ID)
	}
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		Payments:        row.Count,
		TotalMinor:      row.TotalMinor,
		LastAmountMinor: row.LastAmountMinor,
		LastAt:          row.LastAt,
	}
	if user.Role == models.RoleAdmin {
		count, err := s.users.Count(ctx)
		if err != nil {
			return Stats{}, err
		}
		stats.TotalUsers = &count
	}
	return stats, nil
}
