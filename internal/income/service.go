package income

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=income
type Repository interface {
	// UpsertIncome replaces any amount already stored for the same user and month.
	UpsertIncome(ctx context.Context, in *Income) error
	GetIncome(ctx context.Context, userID uuid.UUID, month string) (*Income, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Set records the income for month, defaulting to the current month when
// month is empty.
func (s *Service) Set(ctx context.Context, userID uuid.UUID, month string, amount decimal.Decimal) (*Income, error) {
	key, err := s.monthKey(month)
	if err != nil {
		return nil, err
	}

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	in := &Income{UserID: userID, Month: key, Amount: amount}
	if err := s.repo.UpsertIncome(ctx, in); err != nil {
		return nil, err
	}

	return in, nil
}

// Get returns the income for month. A month without a record yields a zero amount.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, month string) (*Income, error) {
	key, err := s.monthKey(month)
	if err != nil {
		return nil, err
	}

	in, err := s.repo.GetIncome(ctx, userID, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Income{UserID: userID, Month: key, Amount: decimal.Zero}, nil
		}

		return nil, err
	}

	return in, nil
}

func (s *Service) monthKey(month string) (string, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return timeframe.MonthKey(s.now()), nil
	}

	t, err := timeframe.ParseMonth(month)
	if err != nil {
		return "", err
	}

	return timeframe.MonthKey(t), nil
}
