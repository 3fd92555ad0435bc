package expense

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=expense
type Repository interface {
	GetExpense(ctx context.Context, id, userID uuid.UUID) (*Expense, error)
	ListExpenses(ctx context.Context, q Query) ([]*Expense, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx groups expense writes with the category ledger deltas they imply so
// both commit or roll back together.
type Tx interface {
	GetExpenseForUpdate(ctx context.Context, id, userID uuid.UUID) (*Expense, error)
	CreateExpense(ctx context.Context, e *Expense) error
	UpdateExpense(ctx context.Context, e *Expense) error
	DeleteExpense(ctx context.Context, id, userID uuid.UUID) error
	ApplyDelta(ctx context.Context, d category.Delta) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used to resolve named time filters.
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

type CreateParams struct {
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Note        string
	ExpenseDate time.Time
}

type UpdateParams struct {
	CategoryID  *uuid.UUID
	Amount      *decimal.Decimal
	Note        *string
	ExpenseDate *time.Time
}

// ListParams is the unresolved, user-supplied form of a Query.
type ListParams struct {
	CategoryID string
	Filter     string
	Start      string
	End        string
	Limit      *int
}

// Resolve validates params and turns them into a Query scoped to userID.
func (s *Service) Resolve(userID uuid.UUID, params ListParams) (Query, error) {
	q := Query{UserID: userID}

	if raw := strings.TrimSpace(params.CategoryID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Query{}, fmt.Errorf("%w: %q", ErrInvalidCategoryID, raw)
		}

		q.CategoryID = &id
	}

	if params.Limit != nil {
		if *params.Limit <= 0 {
			return Query{}, ErrInvalidLimit
		}

		q.Limit = *params.Limit
	}

	w, err := timeframe.Resolve(timeframe.Params{
		Filter: params.Filter,
		Start:  params.Start,
		End:    params.End,
	}, s.now())
	if err != nil {
		return Query{}, err
	}

	q.Window = w

	return q, nil
}

// List returns the user's expenses matching params, most recent first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, params ListParams) ([]*Expense, error) {
	q, err := s.Resolve(userID, params)
	if err != nil {
		return nil, err
	}

	return s.Query(ctx, q)
}

// Query runs an already resolved query. An empty match is an empty, non-nil slice.
func (s *Service) Query(ctx context.Context, q Query) ([]*Expense, error) {
	expenses, err := s.repo.ListExpenses(ctx, q)
	if err != nil {
		return nil, err
	}

	if expenses == nil {
		expenses = []*Expense{}
	}

	return expenses, nil
}

// Summary aggregates every expense matching params. Any limit is ignored.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, params ListParams) (*Report, error) {
	q, err := s.Resolve(userID, params)
	if err != nil {
		return nil, err
	}

	q.Limit = 0

	expenses, err := s.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	return &Report{Window: q.Window, Summary: Summarize(expenses)}, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Expense, error) {
	return s.repo.GetExpense(ctx, id, userID)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Expense, error) {
	e, err := newExpense(params)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Applying the delta first also proves the category belongs to the user.
	if err := applyDelta(ctx, tx, category.Delta{
		CategoryID: e.CategoryID,
		UserID:     e.UserID,
		Amount:     e.Amount,
		Count:      1,
	}); err != nil {
		return nil, err
	}

	if err := tx.CreateExpense(ctx, e); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return e, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Expense, error) {
	if err := validateUpdate(params); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := tx.GetExpenseForUpdate(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	before := *e

	if params.CategoryID != nil {
		e.CategoryID = *params.CategoryID
	}

	if params.Amount != nil {
		e.Amount = *params.Amount
	}

	if params.Note != nil {
		e.Note = strings.TrimSpace(*params.Note)
	}

	if params.ExpenseDate != nil {
		e.ExpenseDate = normalizeDate(*params.ExpenseDate)
	}

	for _, d := range ledgerDeltas(before, *e) {
		if err := applyDelta(ctx, tx, d); err != nil {
			return nil, err
		}
	}

	if err := tx.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return e, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := tx.GetExpenseForUpdate(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := tx.DeleteExpense(ctx, id, userID); err != nil {
		return err
	}

	if err := applyDelta(ctx, tx, category.Delta{
		CategoryID: e.CategoryID,
		UserID:     e.UserID,
		Amount:     e.Amount.Neg(),
		Count:      -1,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// ImportBatch stores many expenses in one transaction. Every row is validated
// before anything is written and each category receives a single delta.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) ([]*Expense, error) {
	if len(params) == 0 {
		return []*Expense{}, nil
	}

	expenses := make([]*Expense, 0, len(params))

	for i, p := range params {
		e, err := newExpense(p)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		expenses = append(expenses, e)
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, d := range batchDeltas(expenses) {
		if err := applyDelta(ctx, tx, d); err != nil {
			return nil, err
		}
	}

	for _, e := range expenses {
		if err := tx.CreateExpense(ctx, e); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	slog.Info("expenses imported", "count", len(expenses))

	return expenses, nil
}

func newExpense(p CreateParams) (*Expense, error) {
	if p.CategoryID == uuid.Nil {
		return nil, ErrMissingCategory
	}

	if !p.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	note := strings.TrimSpace(p.Note)
	if note == "" {
		return nil, ErrEmptyNote
	}

	if p.ExpenseDate.IsZero() {
		return nil, ErrMissingDate
	}

	return &Expense{
		UserID:      p.UserID,
		CategoryID:  p.CategoryID,
		Amount:      p.Amount,
		Note:        note,
		ExpenseDate: normalizeDate(p.ExpenseDate),
	}, nil
}

func validateUpdate(p UpdateParams) error {
	if p.CategoryID != nil && *p.CategoryID == uuid.Nil {
		return ErrMissingCategory
	}

	if p.Amount != nil && !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if p.Note != nil && strings.TrimSpace(*p.Note) == "" {
		return ErrEmptyNote
	}

	if p.ExpenseDate != nil && p.ExpenseDate.IsZero() {
		return ErrMissingDate
	}

	return nil
}

func normalizeDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// ledgerDeltas returns the category adjustments that turn the ledger state
// for before into the state for after.
func ledgerDeltas(before, after Expense) []category.Delta {
	if before.CategoryID != after.CategoryID {
		return []category.Delta{
			{CategoryID: after.CategoryID, UserID: after.UserID, Amount: after.Amount, Count: 1},
			{CategoryID: before.CategoryID, UserID: before.UserID, Amount: before.Amount.Neg(), Count: -1},
		}
	}

	diff := after.Amount.Sub(before.Amount)
	if diff.IsZero() {
		return nil
	}

	return []category.Delta{{CategoryID: after.CategoryID, UserID: after.UserID, Amount: diff}}
}

// batchDeltas sums expenses per category, ordered by category id.
func batchDeltas(expenses []*Expense) []category.Delta {
	byCategory := make(map[uuid.UUID]category.Delta)

	for _, e := range expenses {
		d, ok := byCategory[e.CategoryID]
		if !ok {
			d = category.Delta{CategoryID: e.CategoryID, UserID: e.UserID, Amount: decimal.Zero}
		}

		d.Amount = d.Amount.Add(e.Amount)
		d.Count++
		byCategory[e.CategoryID] = d
	}

	return slices.SortedFunc(maps.Values(byCategory), func(a, b category.Delta) int {
		return cmp.Compare(a.CategoryID.String(), b.CategoryID.String())
	})
}

func applyDelta(ctx context.Context, tx Tx, d category.Delta) error {
	err := tx.ApplyDelta(ctx, d)
	if err != nil && errors.Is(err, apperr.ErrConsistency) {
		slog.Error("category ledger inconsistency",
			"category_id", d.CategoryID, "user_id", d.UserID,
			"amount", d.Amount.String(), "count", d.Count, "error", err)
	}

	return err
}
