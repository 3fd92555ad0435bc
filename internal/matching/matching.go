package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

var ErrEmptyPattern = fmt.Errorf("%w: pattern must not be empty", apperr.ErrValidation)

// Rule assigns CategoryID to any raw statement description containing
// RawPattern, compared case-insensitively.
type Rule struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	RawPattern string
	CategoryID uuid.UUID
	CreatedAt  time.Time
}
