package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectRuleColumns = `r.id, r.user_id, r.raw_pattern, r.category_id, r.created_at`

func (s *Store) FindMatch(ctx context.Context, userID uuid.UUID, rawDescription string) (*matching.Rule, error) {
	query := `SELECT ` + selectRuleColumns + `
		FROM category_rules r
		WHERE r.user_id = $1 AND POSITION(LOWER(r.raw_pattern) IN LOWER($2)) > 0
		ORDER BY LENGTH(r.raw_pattern) DESC, r.created_at DESC
		LIMIT 1
	`

	var r matching.Rule

	err := s.db.QueryRowContext(ctx, query, userID, rawDescription).
		Scan(&r.ID, &r.UserID, &r.RawPattern, &r.CategoryID, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return &r, nil
}

func (s *Store) CreateRule(ctx context.Context, r *matching.Rule) error {
	query := `
		INSERT INTO category_rules (user_id, raw_pattern, category_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, r.UserID, r.RawPattern, r.CategoryID).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return category.ErrNotFound
		}

		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}

func (s *Store) ListRules(ctx context.Context, userID uuid.UUID) ([]*matching.Rule, error) {
	query := `SELECT ` + selectRuleColumns + `
		FROM category_rules r
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []*matching.Rule

	for rows.Next() {
		var r matching.Rule
		if err := rows.Scan(&r.ID, &r.UserID, &r.RawPattern, &r.CategoryID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rule rows: %w", err)
	}

	return rules, nil
}
