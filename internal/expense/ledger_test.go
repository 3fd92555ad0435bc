package expense_test

import (
	"context"
	"maps"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// memStore keeps expenses and category totals in memory. A transaction works
// on copies that only replace the committed state on Commit.
type memStore struct {
	expenses   map[uuid.UUID]expense.Expense
	categories map[uuid.UUID]*category.Category
}

func newMemStore() *memStore {
	return &memStore{
		expenses:   make(map[uuid.UUID]expense.Expense),
		categories: make(map[uuid.UUID]*category.Category),
	}
}

func (m *memStore) addCategory(userID uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.categories[id] = &category.Category{ID: id, UserID: userID, TotalAmount: decimal.Zero}

	return id
}

func (m *memStore) CreateCategory(_ context.Context, c *category.Category) error {
	c.ID = uuid.New()
	cp := *c
	m.categories[c.ID] = &cp

	return nil
}

func (m *memStore) GetCategory(_ context.Context, id, userID uuid.UUID) (*category.Category, error) {
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, category.ErrNotFound
	}

	cp := *c

	return &cp, nil
}

func (m *memStore) ListCategories(_ context.Context, userID uuid.UUID) ([]*category.Category, error) {
	var out []*category.Category

	for _, c := range m.categories {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}

	return out, nil
}

func (m *memStore) UpdateCategory(_ context.Context, c *category.Category) error {
	cp := *c
	m.categories[c.ID] = &cp

	return nil
}

func (m *memStore) DeleteCategory(_ context.Context, id, userID uuid.UUID) (int64, error) {
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return 0, category.ErrNotFound
	}

	var removed int64

	for eid, e := range m.expenses {
		if e.CategoryID == id && e.UserID == userID {
			delete(m.expenses, eid)
			removed++
		}
	}

	delete(m.categories, id)

	return removed, nil
}

func (m *memStore) GetExpense(_ context.Context, id, userID uuid.UUID) (*expense.Expense, error) {
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return nil, expense.ErrNotFound
	}

	return &e, nil
}

func (m *memStore) ListExpenses(_ context.Context, q expense.Query) ([]*expense.Expense, error) {
	var out []*expense.Expense

	for _, e := range m.expenses {
		if e.UserID != q.UserID || (q.CategoryID != nil && e.CategoryID != *q.CategoryID) || !q.Window.Contains(e.ExpenseDate) {
			continue
		}

		out = append(out, &e)
	}

	return out, nil
}

func (m *memStore) Begin(_ context.Context) (expense.Tx, error) {
	cats := make(map[uuid.UUID]*category.Category, len(m.categories))
	for id, c := range m.categories {
		cp := *c
		cats[id] = &cp
	}

	return &memTx{store: m, expenses: maps.Clone(m.expenses), categories: cats}, nil
}

type memTx struct {
	store      *memStore
	expenses   map[uuid.UUID]expense.Expense
	categories map[uuid.UUID]*category.Category
}

func (t *memTx) GetExpenseForUpdate(_ context.Context, id, userID uuid.UUID) (*expense.Expense, error) {
	e, ok := t.expenses[id]
	if !ok || e.UserID != userID {
		return nil, expense.ErrNotFound
	}

	return &e, nil
}

func (t *memTx) CreateExpense(_ context.Context, e *expense.Expense) error {
	e.ID = uuid.New()
	t.expenses[e.ID] = *e

	return nil
}

func (t *memTx) UpdateExpense(_ context.Context, e *expense.Expense) error {
	t.expenses[e.ID] = *e
	return nil
}

func (t *memTx) DeleteExpense(_ context.Context, id, _ uuid.UUID) error {
	delete(t.expenses, id)
	return nil
}

func (t *memTx) ApplyDelta(_ context.Context, d category.Delta) error {
	c, ok := t.categories[d.CategoryID]
	if !ok || c.UserID != d.UserID {
		return category.ErrNotFound
	}

	total := c.TotalAmount.Add(d.Amount)
	count := c.ExpenseCount + d.Count

	if total.IsNegative() || count < 0 {
		return category.ErrLedgerUnderflow
	}

	c.TotalAmount, c.ExpenseCount = total, count

	return nil
}

func (t *memTx) Commit() error {
	t.store.expenses = t.expenses
	t.store.categories = t.categories

	return nil
}

func (t *memTx) Rollback() error { return nil }

// assertLedger checks every category's totals against the stored expenses.
func assertLedger(t *testing.T, m *memStore) {
	t.Helper()

	for id, c := range m.categories {
		total := decimal.Zero
		count := 0

		for _, e := range m.expenses {
			if e.CategoryID == id {
				total = total.Add(e.Amount)
				count++
			}
		}

		assert.True(t, total.Equal(c.TotalAmount), "category %s total: ledger %s, expenses %s", id, c.TotalAmount, total)
		assert.Equal(t, count, c.ExpenseCount, "category %s count", id)
	}
}

func TestLedgerInvariant(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	userID := uuid.New()
	groceries := store.addCategory(userID)
	leisure := store.addCategory(userID)
	day := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	create := func(cat uuid.UUID, amount string) *expense.Expense {
		e, err := svc.Create(ctx, expense.CreateParams{
			UserID: userID, CategoryID: cat, Amount: decimal.RequireFromString(amount),
			Note: "item", ExpenseDate: day,
		})
		require.NoError(t, err)

		return e
	}

	a := create(groceries, "12.50")
	b := create(groceries, "30.00")
	c := create(leisure, "9.99")
	assertLedger(t, store)
	assert.Equal(t, "42.5", store.categories[groceries].TotalAmount.String())

	_, err := svc.Update(ctx, userID, a.ID, expense.UpdateParams{Amount: new(decimal.RequireFromString("2.50"))})
	require.NoError(t, err)
	assertLedger(t, store)

	_, err = svc.Update(ctx, userID, b.ID, expense.UpdateParams{CategoryID: &leisure})
	require.NoError(t, err)
	assertLedger(t, store)
	assert.Equal(t, 1, store.categories[groceries].ExpenseCount)
	assert.Equal(t, 2, store.categories[leisure].ExpenseCount)

	require.NoError(t, svc.Delete(ctx, userID, c.ID))
	assertLedger(t, store)
	assert.Equal(t, "30", store.categories[leisure].TotalAmount.String())

	_, err = svc.ImportBatch(ctx, []expense.CreateParams{
		{UserID: userID, CategoryID: groceries, Amount: decimal.RequireFromString("1.01"), Note: "x", ExpenseDate: day},
		{UserID: userID, CategoryID: leisure, Amount: decimal.RequireFromString("2.02"), Note: "y", ExpenseDate: day},
	})
	require.NoError(t, err)
	assertLedger(t, store)
}

func TestLedger_ForeignCategoryLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	owner := uuid.New()
	intruder := uuid.New()
	cat := store.addCategory(owner)

	_, err := svc.Create(ctx, expense.CreateParams{
		UserID: intruder, CategoryID: cat, Amount: decimal.RequireFromString("5"),
		Note: "sneaky", ExpenseDate: time.Now(),
	})
	require.ErrorIs(t, err, category.ErrNotFound)

	assert.Empty(t, store.expenses)
	assertLedger(t, store)
}

func TestLedger_FailedRecategorizationRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	userID := uuid.New()
	cat := store.addCategory(userID)
	day := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	e, err := svc.Create(ctx, expense.CreateParams{
		UserID: userID, CategoryID: cat, Amount: decimal.RequireFromString("5"), Note: "a", ExpenseDate: day,
	})
	require.NoError(t, err)

	missing := uuid.New()
	_, err = svc.Update(ctx, userID, e.ID, expense.UpdateParams{CategoryID: &missing})
	require.ErrorIs(t, err, category.ErrNotFound)

	got, err := svc.Get(ctx, userID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, cat, got.CategoryID)
	assertLedger(t, store)
}

// Querying then summarizing a window reproduces exactly what was stored in it.
func TestQuerySummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	userID := uuid.New()
	groceries := store.addCategory(userID)
	store.addCategory(userID)

	other := uuid.New()
	otherCat := store.addCategory(other)

	for i, amount := range []string{"1.10", "2.20", "3.30"} {
		_, err := svc.Create(ctx, expense.CreateParams{
			UserID: userID, CategoryID: groceries, Amount: decimal.RequireFromString(amount),
			Note: "in window", ExpenseDate: fixedNow.AddDate(0, 0, -i-1),
		})
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, expense.CreateParams{
		UserID: userID, CategoryID: groceries, Amount: decimal.RequireFromString("100"),
		Note: "too old", ExpenseDate: fixedNow.AddDate(0, 0, -30),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, expense.CreateParams{
		UserID: other, CategoryID: otherCat, Amount: decimal.RequireFromString("50"),
		Note: "someone else", ExpenseDate: fixedNow,
	})
	require.NoError(t, err)

	report, err := svc.Summary(ctx, userID, expense.ListParams{Filter: "past_week"})
	require.NoError(t, err)

	assert.Equal(t, "6.6", report.Summary.TotalAmount.String())
	assert.Equal(t, 3, report.Summary.TotalCount)
	assert.Len(t, report.Summary.Breakdown, 1, "empty categories are omitted")
}

func TestCategoryDeleteCascadesToExpenses(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)
	categories := category.NewService(store, category.NewVocabulary([]string{"Groceries", "Leisure"}))

	userID := uuid.New()
	doomed := store.addCategory(userID)
	kept := store.addCategory(userID)
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	var ids []uuid.UUID

	for _, amount := range []string{"10", "20"} {
		e, err := svc.Create(ctx, expense.CreateParams{
			UserID: userID, CategoryID: doomed, Amount: decimal.RequireFromString(amount),
			Note: "gone soon", ExpenseDate: day,
		})
		require.NoError(t, err)

		ids = append(ids, e.ID)
	}

	_, err := svc.Create(ctx, expense.CreateParams{
		UserID: userID, CategoryID: kept, Amount: decimal.RequireFromString("5"),
		Note: "survivor", ExpenseDate: day,
	})
	require.NoError(t, err)

	require.NoError(t, categories.Delete(ctx, userID, doomed))

	for _, id := range ids {
		_, err := svc.Get(ctx, userID, id)
		assert.ErrorIs(t, err, expense.ErrNotFound)
	}

	scoped := expense.ListParams{CategoryID: doomed.String()}

	listed, err := svc.List(ctx, userID, scoped)
	require.NoError(t, err)
	assert.Empty(t, listed)

	report, err := svc.Summary(ctx, userID, scoped)
	require.NoError(t, err)
	assert.True(t, report.Summary.TotalAmount.IsZero())
	assert.Zero(t, report.Summary.TotalCount)

	report, err = svc.Summary(ctx, userID, expense.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "5", report.Summary.TotalAmount.String())
	assert.Equal(t, 1, report.Summary.TotalCount)
	assert.NotContains(t, report.Summary.Breakdown, doomed)
	assert.Contains(t, report.Summary.Breakdown, kept)

	_, err = categories.Get(ctx, userID, doomed)
	assert.ErrorIs(t, err, category.ErrNotFound)
	assertLedger(t, store)
}
