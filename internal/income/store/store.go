package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/income"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertIncome(ctx context.Context, in *income.Income) error {
	query := `
		INSERT INTO incomes (user_id, month, amount, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, month) DO UPDATE
		SET amount = EXCLUDED.amount, updated_at = NOW()
		RETURNING updated_at
	`

	if err := s.db.QueryRowContext(ctx, query, in.UserID, in.Month, in.Amount).Scan(&in.UpdatedAt); err != nil {
		return fmt.Errorf("upserting income: %w", err)
	}

	return nil
}

func (s *Store) GetIncome(ctx context.Context, userID uuid.UUID, month string) (*income.Income, error) {
	query := `SELECT user_id, month, amount, updated_at FROM incomes WHERE user_id = $1 AND month = $2`

	var in income.Income

	err := s.db.QueryRowContext(ctx, query, userID, month).Scan(&in.UserID, &in.Month, &in.Amount, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, income.ErrNotFound
		}

		return nil, fmt.Errorf("getting income: %w", err)
	}

	return &in, nil
}
