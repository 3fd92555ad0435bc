package savings_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	savingsHandler "github.com/MrJamesThe3rd/tally/internal/http/savings"
	"github.com/MrJamesThe3rd/tally/internal/income"
	"github.com/MrJamesThe3rd/tally/internal/savings"
)

var userID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

type mocks struct {
	expenses   *expense.MockRepository
	categories *category.MockRepository
	incomes    *income.MockRepository
}

func newRouter(t *testing.T) (http.Handler, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		expenses:   expense.NewMockRepository(ctrl),
		categories: category.NewMockRepository(ctrl),
		incomes:    income.NewMockRepository(ctrl),
	}

	now := func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }
	calc := savings.NewCalculator(
		expense.NewService(m.expenses),
		category.NewService(m.categories, category.NewVocabulary([]string{"Groceries"})),
		income.NewService(m.incomes),
		savings.WithClock(now),
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})
	r.Route("/savings", savingsHandler.NewHandler(calc).Routes)

	return r, m
}

func TestHandler_Get(t *testing.T) {
	router, m := newRouter(t)
	groceries := uuid.New()

	m.incomes.EXPECT().GetIncome(gomock.Any(), userID, "2024-02").
		Return(&income.Income{UserID: userID, Month: "2024-02", Amount: decimal.NewFromInt(1000)}, nil)
	m.expenses.EXPECT().ListExpenses(gomock.Any(), gomock.Any()).Return([]*expense.Expense{
		{ID: uuid.New(), UserID: userID, CategoryID: groceries, Amount: decimal.RequireFromString("250.50"),
			Note: "shop", ExpenseDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
	}, nil)
	m.categories.EXPECT().ListCategories(gomock.Any(), userID).Return([]*category.Category{
		{ID: groceries, UserID: userID, Title: "Groceries", TotalAmount: decimal.RequireFromString("900"), ExpenseCount: 7},
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/savings?month=2024-02", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Month             string    `json:"month"`
		End               time.Time `json:"end"`
		Savings           string    `json:"savings"`
		SavingsPercentage string    `json:"savings_percentage"`
		Categories        []struct {
			Title    string `json:"title"`
			Lifetime struct {
				Count int `json:"count"`
			} `json:"lifetime"`
			Month struct {
				Amount string `json:"amount"`
			} `json:"month"`
		} `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

	assert.Equal(t, "2024-02", got.Month)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), got.End)
	assert.Equal(t, "749.5", got.Savings)
	assert.Equal(t, "74.95", got.SavingsPercentage)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Groceries", got.Categories[0].Title)
	assert.Equal(t, 7, got.Categories[0].Lifetime.Count)
	assert.Equal(t, "250.5", got.Categories[0].Month.Amount)
}

func TestHandler_MalformedMonth(t *testing.T) {
	router, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/savings?month=2024-13", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
