package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/category"
	categorystore "github.com/MrJamesThe3rd/tally/internal/category/store"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/expense"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectExpenseColumns = `
	e.id, e.user_id, e.category_id, e.amount, e.note, e.expense_date, e.created_at, e.updated_at
`

func scanExpense(s scanner) (*expense.Expense, error) {
	var e expense.Expense

	if err := s.Scan(
		&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Note,
		&e.ExpenseDate, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.ExpenseDate = e.ExpenseDate.UTC()

	return &e, nil
}

func (s *Store) GetExpense(ctx context.Context, id, userID uuid.UUID) (*expense.Expense, error) {
	return getExpense(ctx, s.db, id, userID, false)
}

func getExpense(ctx context.Context, q categorystore.Querier, id, userID uuid.UUID, lock bool) (*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + `
		FROM expenses e
		WHERE e.id = $1 AND e.user_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	e, err := scanExpense(q.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, expense.ErrNotFound
		}

		return nil, fmt.Errorf("getting expense: %w", err)
	}

	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, q expense.Query) ([]*expense.Expense, error) {
	query, args := buildListQuery(q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", err)
	}

	return expenses, nil
}

func buildListQuery(q expense.Query) (string, []any) {
	var sb strings.Builder

	sb.WriteString(`SELECT ` + selectExpenseColumns + `
		FROM expenses e
		WHERE e.user_id = $1`)

	args := []any{q.UserID}
	argIdx := 2

	if q.CategoryID != nil {
		fmt.Fprintf(&sb, " AND e.category_id = $%d", argIdx)
		args = append(args, *q.CategoryID)
		argIdx++
	}

	if q.Window.Start != nil {
		fmt.Fprintf(&sb, " AND e.expense_date >= $%d", argIdx)
		args = append(args, *q.Window.Start)
		argIdx++
	}

	if q.Window.End != nil {
		fmt.Fprintf(&sb, " AND e.expense_date <= $%d", argIdx)
		args = append(args, *q.Window.End)
		argIdx++
	}

	sb.WriteString(" ORDER BY e.expense_date DESC, e.id ASC")

	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT $%d", argIdx)
		args = append(args, q.Limit)
	}

	return sb.String(), args
}

func (s *Store) Begin(ctx context.Context) (expense.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &tx{tx: dbTx}, nil
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) GetExpenseForUpdate(ctx context.Context, id, userID uuid.UUID) (*expense.Expense, error) {
	return getExpense(ctx, t.tx, id, userID, true)
}

func (t *tx) CreateExpense(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (user_id, category_id, amount, note, expense_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		e.UserID,
		e.CategoryID,
		e.Amount,
		e.Note,
		e.ExpenseDate,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return category.ErrNotFound
		}

		return fmt.Errorf("creating expense: %w", err)
	}

	return nil
}

func (t *tx) UpdateExpense(ctx context.Context, e *expense.Expense) error {
	query := `
		UPDATE expenses
		SET category_id = $1, amount = $2, note = $3, expense_date = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		e.CategoryID, e.Amount, e.Note, e.ExpenseDate, e.ID, e.UserID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return expense.ErrNotFound
		}

		if database.IsForeignKeyViolation(err) {
			return category.ErrNotFound
		}

		return fmt.Errorf("updating expense: %w", err)
	}

	return nil
}

func (t *tx) DeleteExpense(ctx context.Context, id, userID uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return expense.ErrNotFound
	}

	return nil
}

func (t *tx) ApplyDelta(ctx context.Context, d category.Delta) error {
	return categorystore.ApplyDelta(ctx, t.tx, d)
}

func (t *tx) Commit() error {
	return t.tx.Commit()
}

func (t *tx) Rollback() error {
	return t.tx.Rollback()
}
