package income

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/income"
)

type Handler struct {
	svc *income.Service
}

func NewHandler(svc *income.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.set)
}

type incomeResponse struct {
	Month     string          `json:"month"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(in *income.Income) incomeResponse {
	resp := incomeResponse{Month: in.Month, Amount: in.Amount}
	if !in.UpdatedAt.IsZero() {
		resp.UpdatedAt = &in.UpdatedAt
	}

	return resp
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	in, err := h.svc.Get(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(in))
}

type setRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req setRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	in, err := h.svc.Set(r.Context(), userID, r.URL.Query().Get("month"), req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(in))
}
