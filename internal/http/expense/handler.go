package expense

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
)

type Handler struct {
	svc *expense.Service
}

func NewHandler(svc *expense.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	params, err := ParseListParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	withSummary, err := parseBool(r, "include_summary")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	expenses, err := h.svc.List(r.Context(), userID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := listResponse{Expenses: toResponses(expenses)}
	if withSummary {
		resp.Summary = new(toSummaryResponse(expense.Summarize(expenses)))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	params, err := ParseListParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	report, err := h.svc.Summary(r.Context(), userID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReportResponse(report))
}

type createRequest struct {
	CategoryID  uuid.UUID       `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note"`
	ExpenseDate time.Time       `json:"expense_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), expense.CreateParams{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Note:        req.Note,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

type updateRequest struct {
	CategoryID  *uuid.UUID       `json:"category_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Note        *string          `json:"note"`
	ExpenseDate *time.Time       `json:"expense_date"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.CategoryID == nil && req.Amount == nil && req.Note == nil && req.ExpenseDate == nil {
		respond.Message(w, http.StatusBadRequest, "nothing to update")
		return
	}

	e, err := h.svc.Update(r.Context(), userID, id, expense.UpdateParams{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Note:        req.Note,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}
