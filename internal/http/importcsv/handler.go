package importcsv

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc  *importer.Service
	expenseSvc *expense.Service
	matchSvc   *matching.Service
}

func NewHandler(importSvc *importer.Service, expenseSvc *expense.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		expenseSvc: expenseSvc,
		matchSvc:   matchSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/banks", h.banks)
	r.Post("/", h.importCSV)
}

type lineResponse struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Matched     bool            `json:"matched"`
}

type importResponse struct {
	Bank           importer.Bank  `json:"bank"`
	Charset        string         `json:"charset"`
	DryRun         bool           `json:"dry_run"`
	Imported       int            `json:"imported"`
	Matched        int            `json:"matched"`
	SkippedCredits int            `json:"skipped_credits"`
	Lines          []lineResponse `json:"lines"`
}

func (h *Handler) banks(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string][]importer.Bank{"banks": h.importSvc.Banks()})
}

// importCSV parses an uploaded statement and records each debit as an
// expense. A line goes to the category of the first learned rule matching its
// description, or to the form's category_id otherwise. With dry_run set the
// categorized lines are returned without being stored.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Message(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	bank := importer.Bank(strings.TrimSpace(r.FormValue("bank")))
	if bank == "" {
		respond.Message(w, http.StatusBadRequest, "bank field is required")
		return
	}

	var fallback uuid.UUID

	if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respond.Error(w, r, fmt.Errorf("%w: %q", expense.ErrInvalidCategoryID, raw))
			return
		}

		fallback = id
	}

	dryRun := false

	if raw := strings.TrimSpace(r.FormValue("dry_run")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Message(w, http.StatusBadRequest, "dry_run must be a boolean")
			return
		}

		dryRun = b
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.importSvc.Import(bank, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := importResponse{
		Bank:           bank,
		Charset:        string(result.Statement.Charset),
		DryRun:         dryRun,
		SkippedCredits: result.SkippedCredits,
		Lines:          make([]lineResponse, 0, len(result.Debits)),
	}
	params := make([]expense.CreateParams, 0, len(result.Debits))
	var uncategorized []int

	for i, l := range result.Debits {
		categoryID, err := h.matchSvc.Suggest(r.Context(), userID, l.Description)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		line := lineResponse{Date: l.Date, Description: l.Description, Amount: l.Amount}

		switch {
		case categoryID != uuid.Nil:
			line.CategoryID = &categoryID
			line.Matched = true
			resp.Matched++
		case fallback != uuid.Nil:
			line.CategoryID = &fallback
		default:
			uncategorized = append(uncategorized, i+1)
		}

		resp.Lines = append(resp.Lines, line)

		if line.CategoryID != nil {
			params = append(params, expense.CreateParams{
				UserID:      userID,
				CategoryID:  *line.CategoryID,
				Amount:      l.Amount,
				Note:        l.Description,
				ExpenseDate: l.Date,
			})
		}
	}

	if dryRun {
		respond.JSON(w, http.StatusOK, resp)
		return
	}

	if len(uncategorized) > 0 {
		respond.Message(w, http.StatusBadRequest,
			fmt.Sprintf("no rule matched lines %v and no category_id was given", uncategorized))
		return
	}

	expenses, err := h.expenseSvc.ImportBatch(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp.Imported = len(expenses)

	slog.Info("statement imported", "user_id", userID, "bank", bank,
		"imported", resp.Imported, "matched", resp.Matched, "skipped_credits", resp.SkippedCredits)

	respond.JSON(w, http.StatusCreated, resp)
}
