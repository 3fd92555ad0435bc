package expense

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

var (
	ErrNotFound          = fmt.Errorf("%w: expense does not exist", apperr.ErrNotFound)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be greater than zero", apperr.ErrValidation)
	ErrEmptyNote         = fmt.Errorf("%w: note must not be empty", apperr.ErrValidation)
	ErrMissingDate       = fmt.Errorf("%w: expense_date is required", apperr.ErrValidation)
	ErrMissingCategory   = fmt.Errorf("%w: category_id is required", apperr.ErrValidation)
	ErrInvalidCategoryID = fmt.Errorf("%w: invalid category_id", apperr.ErrValidation)
	ErrInvalidLimit      = fmt.Errorf("%w: limit must be a positive integer", apperr.ErrValidation)
)

// Expense is a single dated spend recorded against one of the user's categories.
type Expense struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Note        string
	ExpenseDate time.Time // When the spend happened, not when it was recorded.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Query is a fully resolved expense lookup. UserID is always applied.
type Query struct {
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	Window     timeframe.Window
	Limit      int // Zero means no limit.
}
