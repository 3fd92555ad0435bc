package expense_test

import (
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

func newExpense(categoryID uuid.UUID, amount string, date time.Time) *expense.Expense {
	return &expense.Expense{
		ID:          uuid.New(),
		CategoryID:  categoryID,
		Amount:      decimal.RequireFromString(amount),
		Note:        "note",
		ExpenseDate: date,
	}
}

func TestSummarize(t *testing.T) {
	groceries := uuid.New()
	health := uuid.New()
	unused := uuid.New()
	day := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	expenses := []*expense.Expense{
		newExpense(groceries, "12.50", day),
		newExpense(health, "40.00", day.Add(-time.Hour)),
		newExpense(groceries, "7.25", day.AddDate(0, 0, -1)),
	}

	sum := expense.Summarize(expenses)

	assert.True(t, sum.TotalAmount.Equal(decimal.RequireFromString("59.75")), sum.TotalAmount.String())
	assert.Equal(t, 3, sum.TotalCount)
	require.Len(t, sum.Breakdown, 2)

	assert.True(t, sum.Breakdown[groceries].Amount.Equal(decimal.RequireFromString("19.75")))
	assert.Equal(t, 2, sum.Breakdown[groceries].Count)
	assert.True(t, sum.Breakdown[health].Amount.Equal(decimal.RequireFromString("40")))
	assert.Equal(t, 1, sum.Breakdown[health].Count)

	_, ok := sum.Breakdown[unused]
	assert.False(t, ok, "categories without expenses must not appear")
}

func TestSummarize_Empty(t *testing.T) {
	sum := expense.Summarize(nil)

	assert.True(t, sum.TotalAmount.IsZero())
	assert.Equal(t, 0, sum.TotalCount)
	assert.Empty(t, sum.Breakdown)
}

func TestSummarize_OrderIndependent(t *testing.T) {
	cat := uuid.New()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	expenses := []*expense.Expense{
		newExpense(cat, "0.10", day),
		newExpense(cat, "0.20", day.Add(time.Minute)),
		newExpense(cat, "0.30", day.Add(2*time.Minute)),
		newExpense(uuid.New(), "1000000.01", day),
	}

	want := expense.Summarize(expenses)

	reversed := slices.Clone(expenses)
	slices.Reverse(reversed)
	got := expense.Summarize(reversed)

	assert.Equal(t, want.TotalAmount.String(), got.TotalAmount.String())
	assert.Equal(t, want.TotalCount, got.TotalCount)
	assert.Equal(t, "0.6", got.Breakdown[cat].Amount.String())
}

// The breakdown of a result set always adds back up to its totals.
func TestSummarize_BreakdownMatchesTotals(t *testing.T) {
	cats := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	day := time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)

	var expenses []*expense.Expense

	for i := range 20 {
		amount := decimal.NewFromInt(int64(i + 1)).Div(decimal.NewFromInt(4))
		expenses = append(expenses, newExpense(cats[i%len(cats)], amount.String(), day.Add(-time.Duration(i)*time.Hour)))
	}

	sum := expense.Summarize(expenses)

	total := decimal.Zero
	count := 0

	for _, ct := range sum.Breakdown {
		total = total.Add(ct.Amount)
		count += ct.Count
	}

	assert.True(t, total.Equal(sum.TotalAmount))
	assert.Equal(t, len(expenses), count)
	assert.Equal(t, len(expenses), sum.TotalCount)
}
