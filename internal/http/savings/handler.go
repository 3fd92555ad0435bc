package savings

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/savings"
)

type Handler struct {
	calc *savings.Calculator
}

func NewHandler(calc *savings.Calculator) *Handler {
	return &Handler{calc: calc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type totalsResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

type categoryResponse struct {
	CategoryID uuid.UUID      `json:"category_id"`
	Title      string         `json:"title"`
	Lifetime   totalsResponse `json:"lifetime"`
	Month      totalsResponse `json:"month"`
}

type reportResponse struct {
	Month             string             `json:"month"`
	Start             time.Time          `json:"start"`
	End               time.Time          `json:"end"`
	Income            decimal.Decimal    `json:"income"`
	TotalExpenses     decimal.Decimal    `json:"total_expenses"`
	ExpenseCount      int                `json:"expense_count"`
	Savings           decimal.Decimal    `json:"savings"`
	SavingsPercentage decimal.Decimal    `json:"savings_percentage"`
	Categories        []categoryResponse `json:"categories"`
}

func toResponse(r *savings.Report) reportResponse {
	resp := reportResponse{
		Month:             r.Month,
		Start:             *r.Window.Start,
		End:               *r.Window.End,
		Income:            r.Income,
		TotalExpenses:     r.TotalExpenses,
		ExpenseCount:      r.ExpenseCount,
		Savings:           r.Savings,
		SavingsPercentage: r.SavingsPercentage,
		Categories:        make([]categoryResponse, len(r.Categories)),
	}

	for i, c := range r.Categories {
		resp.Categories[i] = categoryResponse{
			CategoryID: c.CategoryID,
			Title:      c.Title,
			Lifetime:   totalsResponse(c.Lifetime),
			Month:      totalsResponse(c.Month),
		}
	}

	return resp
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	report, err := h.calc.Calculate(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(report))
}
