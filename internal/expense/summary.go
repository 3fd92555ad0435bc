package expense

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

// CategoryTotal is the subtotal of one category within a result set.
type CategoryTotal struct {
	Amount decimal.Decimal
	Count  int
}

// Summary aggregates a set of expenses. Breakdown only holds categories that
// actually appear in the set.
type Summary struct {
	TotalAmount decimal.Decimal
	TotalCount  int
	Breakdown   map[uuid.UUID]CategoryTotal
}

// Report is a summary together with the window it was computed over.
type Report struct {
	Window  timeframe.Window
	Summary Summary
}

// Summarize reduces expenses into totals and a per-category breakdown.
// Accumulation always runs in query order, so the result does not depend on
// the order of the input slice.
func Summarize(expenses []*Expense) Summary {
	sorted := slices.Clone(expenses)
	slices.SortStableFunc(sorted, compareByDateDesc)

	sum := Summary{
		TotalAmount: decimal.Zero,
		Breakdown:   make(map[uuid.UUID]CategoryTotal),
	}

	for _, e := range sorted {
		sum.TotalAmount = sum.TotalAmount.Add(e.Amount)
		sum.TotalCount++

		ct, ok := sum.Breakdown[e.CategoryID]
		if !ok {
			ct.Amount = decimal.Zero
		}

		ct.Amount = ct.Amount.Add(e.Amount)
		ct.Count++
		sum.Breakdown[e.CategoryID] = ct
	}

	return sum
}

// compareByDateDesc orders most recent first, then by identifier.
func compareByDateDesc(a, b *Expense) int {
	if c := b.ExpenseDate.Compare(a.ExpenseDate); c != 0 {
		return c
	}

	return strings.Compare(a.ID.String(), b.ID.String())
}
