package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/export"
	expenseHandler "github.com/MrJamesThe3rd/tally/internal/http/expense"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download accepts the same query parameters as the expense listing.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	params, err := expenseHandler.ParseListParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer

	n, err := h.svc.WriteCSV(r.Context(), userID, params, &buf)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.svc.Filename(params)))
	w.Header().Set("X-Expense-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
