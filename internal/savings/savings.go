package savings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/income"
	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

type ExpenseQuerier interface {
	Query(ctx context.Context, q expense.Query) ([]*expense.Expense, error)
}

type CategoryLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]*category.Category, error)
}

type IncomeGetter interface {
	Get(ctx context.Context, userID uuid.UUID, month string) (*income.Income, error)
}

type Totals struct {
	Amount decimal.Decimal
	Count  int
}

// CategoryReport pairs a category's all-time ledger totals with what was
// spent in it during the reported month.
type CategoryReport struct {
	CategoryID uuid.UUID
	Title      string
	Lifetime   Totals
	Month      Totals
}

type Report struct {
	Month             string
	Window            timeframe.Window
	Income            decimal.Decimal
	TotalExpenses     decimal.Decimal
	ExpenseCount      int
	Savings           decimal.Decimal
	SavingsPercentage decimal.Decimal
	Categories        []CategoryReport
}

type Calculator struct {
	expenses   ExpenseQuerier
	categories CategoryLister
	income     IncomeGetter
	now        func() time.Time
}

type Option func(*Calculator)

func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

func NewCalculator(expenses ExpenseQuerier, categories CategoryLister, income IncomeGetter, opts ...Option) *Calculator {
	c := &Calculator{
		expenses:   expenses,
		categories: categories,
		income:     income,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

var hundred = decimal.NewFromInt(100)

// Calculate reports income against spending for month ("YYYY-MM"), or for
// the current month when month is empty.
func (c *Calculator) Calculate(ctx context.Context, userID uuid.UUID, month string) (*Report, error) {
	ref := c.now().UTC()

	if month = strings.TrimSpace(month); month != "" {
		t, err := timeframe.ParseMonth(month)
		if err != nil {
			return nil, err
		}

		ref = t
	}

	key := timeframe.MonthKey(ref)
	window := timeframe.MonthWindow(ref)

	in, err := c.income.Get(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("getting income: %w", err)
	}

	expenses, err := c.expenses.Query(ctx, expense.Query{UserID: userID, Window: window})
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}

	categories, err := c.categories.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	sum := expense.Summarize(expenses)
	balance := in.Amount.Sub(sum.TotalAmount)

	report := &Report{
		Month:             key,
		Window:            window,
		Income:            in.Amount,
		TotalExpenses:     sum.TotalAmount,
		ExpenseCount:      sum.TotalCount,
		Savings:           balance,
		SavingsPercentage: percentage(balance, in.Amount),
		Categories:        make([]CategoryReport, 0, len(categories)),
	}

	for _, cat := range categories {
		spent := sum.Breakdown[cat.ID]

		report.Categories = append(report.Categories, CategoryReport{
			CategoryID: cat.ID,
			Title:      cat.Title,
			Lifetime:   Totals{Amount: cat.TotalAmount, Count: cat.ExpenseCount},
			Month:      Totals{Amount: spent.Amount, Count: spent.Count},
		})
	}

	return report, nil
}

func percentage(savings, income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}

	return savings.Div(income).Mul(hundred).RoundBank(2)
}
