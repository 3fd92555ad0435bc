package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectCategoryColumns = `
	c.id, c.user_id, c.title, c.description, c.total_amount, c.expense_count, c.created_at, c.updated_at
`

func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category

	if err := s.Scan(
		&c.ID, &c.UserID, &c.Title, &c.Description,
		&c.TotalAmount, &c.ExpenseCount, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (user_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, total_amount, expense_count, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, c.UserID, c.Title, c.Description).
		Scan(&c.ID, &c.TotalAmount, &c.ExpenseCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %q", category.ErrDuplicateTitle, c.Title)
		}

		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id, userID uuid.UUID) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + `
		FROM categories c
		WHERE c.id = $1 AND c.user_id = $2`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + `
		FROM categories c
		WHERE c.user_id = $1
		ORDER BY c.title ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return categories, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET title = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, c.Title, c.Description, c.ID, c.UserID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return category.ErrNotFound
		}

		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %q", category.ErrDuplicateTitle, c.Title)
		}

		return fmt.Errorf("updating category: %w", err)
	}

	return nil
}

// ApplyDelta adjusts the running totals of one category in a single UPDATE,
// so the increment is atomic at the storage layer. The table's CHECK
// constraints reject any delta that would leave a negative total or count.
func ApplyDelta(ctx context.Context, q Querier, d category.Delta) error {
	query := `
		UPDATE categories
		SET total_amount = total_amount + $1,
		    expense_count = expense_count + $2,
		    updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING expense_count
	`

	var count int

	err := q.QueryRowContext(ctx, query, d.Amount, d.Count, d.CategoryID, d.UserID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return category.ErrNotFound
		}

		if database.IsCheckViolation(err) {
			return fmt.Errorf("%w: category %s amount %s count %d",
				category.ErrLedgerUnderflow, d.CategoryID, d.Amount, d.Count)
		}

		return fmt.Errorf("applying ledger delta: %w", err)
	}

	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx,
		`DELETE FROM expenses WHERE category_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting category expenses: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted expenses: %w", err)
	}

	res, err = dbTx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted categories: %w", err)
	}

	if n == 0 {
		return 0, category.ErrNotFound
	}

	var orphans int
	if err := dbTx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE category_id = $1`, id).Scan(&orphans); err != nil {
		return 0, fmt.Errorf("checking for orphaned expenses: %w", err)
	}

	if orphans > 0 {
		return 0, fmt.Errorf("%w: %d expenses still reference category %s", category.ErrOrphanedExpenses, orphans, id)
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return removed, nil
}
