package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

type fakeExpenses struct {
	expenses []*expense.Expense
	err      error
	seen     expense.Query
}

func (f *fakeExpenses) Resolve(userID uuid.UUID, params expense.ListParams) (expense.Query, error) {
	w, err := timeframe.Resolve(timeframe.Params{
		Filter: params.Filter, Start: params.Start, End: params.End,
	}, time.Now())
	if err != nil {
		return expense.Query{}, err
	}

	return expense.Query{UserID: userID, Window: w}, nil
}

func (f *fakeExpenses) Query(_ context.Context, q expense.Query) ([]*expense.Expense, error) {
	f.seen = q
	return f.expenses, f.err
}

type fakeCategories []*category.Category

func (f fakeCategories) List(context.Context, uuid.UUID) ([]*category.Category, error) {
	return f, nil
}

func TestService_WriteCSV(t *testing.T) {
	userID := uuid.New()
	groceries := &category.Category{ID: uuid.New(), Title: "Groceries"}

	expenses := &fakeExpenses{expenses: []*expense.Expense{
		{
			ID: uuid.New(), CategoryID: groceries.ID, Amount: decimal.RequireFromString("12.5"),
			Note: "market, weekly", ExpenseDate: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: uuid.New(), CategoryID: groceries.ID, Amount: decimal.RequireFromString("3"),
			Note: `bread "sourdough"`, ExpenseDate: time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC),
		},
	}}

	svc := export.NewService(expenses, fakeCategories{groceries})

	var buf bytes.Buffer

	n, err := svc.WriteCSV(context.Background(), userID, expense.ListParams{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, userID, expenses.seen.UserID)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"date", "category", "amount", "note"},
		{"2024-03-10T09:00:00Z", "Groceries", "12.50", "market, weekly"},
		{"2024-03-09T18:30:00Z", "Groceries", "3.00", `bread "sourdough"`},
	}, records)
}

func TestService_WriteCSV_Errors(t *testing.T) {
	t.Run("InvalidFilter", func(t *testing.T) {
		svc := export.NewService(&fakeExpenses{}, fakeCategories{})

		var buf bytes.Buffer

		_, err := svc.WriteCSV(context.Background(), uuid.New(), expense.ListParams{Filter: "yesterday"}, &buf)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Zero(t, buf.Len())
	})

	t.Run("QueryFailure", func(t *testing.T) {
		svc := export.NewService(&fakeExpenses{err: errors.New("db down")}, fakeCategories{})

		var buf bytes.Buffer

		_, err := svc.WriteCSV(context.Background(), uuid.New(), expense.ListParams{}, &buf)
		assert.Error(t, err)
	})
}

func TestService_Filename(t *testing.T) {
	svc := export.NewService(&fakeExpenses{}, fakeCategories{})
	today := time.Now().UTC().Format(time.DateOnly)

	tests := []struct {
		name   string
		params expense.ListParams
		want   string
	}{
		{"AllTime", expense.ListParams{}, "expenses-all-time-" + today + ".csv"},
		{"PastWeek", expense.ListParams{Filter: "past_week"}, "expenses-past-week-" + today + ".csv"},
		{"Custom", expense.ListParams{Filter: "custom", Start: "2024-01-01", End: "2024-01-31"}, "expenses-2024-01-01-to-2024-01-31.csv"},
		{"OpenEnded", expense.ListParams{Start: "2024-01-01"}, "expenses-2024-01-01-to-now.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Filename(tt.params))
		})
	}
}
