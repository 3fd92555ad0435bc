package export

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

type ExpenseQuerier interface {
	Resolve(userID uuid.UUID, params expense.ListParams) (expense.Query, error)
	Query(ctx context.Context, q expense.Query) ([]*expense.Expense, error)
}

type CategoryLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]*category.Category, error)
}

var header = []string{"date", "category", "amount", "note"}

// Service writes expense query results as CSV.
type Service struct {
	expenses   ExpenseQuerier
	categories CategoryLister
	now        func() time.Time
}

func NewService(expenses ExpenseQuerier, categories CategoryLister) *Service {
	return &Service{expenses: expenses, categories: categories, now: time.Now}
}

// WriteCSV writes every expense matching params to w, most recent first,
// and returns how many rows were written.
func (s *Service) WriteCSV(ctx context.Context, userID uuid.UUID, params expense.ListParams, w io.Writer) (int, error) {
	q, err := s.expenses.Resolve(userID, params)
	if err != nil {
		return 0, err
	}

	expenses, err := s.expenses.Query(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("querying expenses: %w", err)
	}

	categories, err := s.categories.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("listing categories: %w", err)
	}

	titles := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		titles[c.ID] = c.Title
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, e := range expenses {
		record := []string{
			e.ExpenseDate.UTC().Format(time.RFC3339),
			titles[e.CategoryID],
			e.Amount.StringFixed(2),
			e.Note,
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing expense %s: %w", e.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(expenses), nil
}

// Filename derives a download name from the filter and bounds in params.
func (s *Service) Filename(params expense.ListParams) string {
	parts := []string{"expenses"}

	start, end := strings.TrimSpace(params.Start), strings.TrimSpace(params.End)

	switch {
	case start != "" || end != "":
		parts = append(parts, cmp.Or(start, "start"), "to", cmp.Or(end, "now"))
	default:
		parts = append(parts, timeframe.Filter(params.Filter).Label(), s.now().UTC().Format(time.DateOnly))
	}

	return slug.Make(strings.Join(parts, " ")) + ".csv"
}
