package income

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

var (
	ErrNotFound      = fmt.Errorf("%w: no income recorded for month", apperr.ErrNotFound)
	ErrInvalidAmount = fmt.Errorf("%w: income must be greater than zero", apperr.ErrValidation)
)

// Income is what a user earned in one calendar month. Month is "YYYY-MM".
type Income struct {
	UserID    uuid.UUID
	Month     string
	Amount    decimal.Decimal
	UpdatedAt time.Time
}
