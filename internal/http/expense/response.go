package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

type expenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toResponse(e *expense.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Note:        e.Note,
		ExpenseDate: e.ExpenseDate,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toResponses(expenses []*expense.Expense) []expenseResponse {
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toResponse(e)
	}

	return resp
}

type categoryTotalResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

type summaryResponse struct {
	TotalAmount decimal.Decimal                     `json:"total_amount"`
	TotalCount  int                                 `json:"total_count"`
	Breakdown   map[uuid.UUID]categoryTotalResponse `json:"category_breakdown"`
}

func toSummaryResponse(s expense.Summary) summaryResponse {
	resp := summaryResponse{
		TotalAmount: s.TotalAmount,
		TotalCount:  s.TotalCount,
		Breakdown:   make(map[uuid.UUID]categoryTotalResponse, len(s.Breakdown)),
	}

	for id, ct := range s.Breakdown {
		resp.Breakdown[id] = categoryTotalResponse{Amount: ct.Amount, Count: ct.Count}
	}

	return resp
}

type windowResponse struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

type reportResponse struct {
	Window  windowResponse  `json:"window"`
	Summary summaryResponse `json:"summary"`
}

func toReportResponse(r *expense.Report) reportResponse {
	return reportResponse{
		Window:  toWindowResponse(r.Window),
		Summary: toSummaryResponse(r.Summary),
	}
}

func toWindowResponse(w timeframe.Window) windowResponse {
	return windowResponse{Start: w.Start, End: w.End}
}

type listResponse struct {
	Expenses []expenseResponse `json:"expenses"`
	Summary  *summaryResponse  `json:"summary,omitempty"`
}
