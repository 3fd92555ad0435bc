package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

var (
	ErrNotFound           = fmt.Errorf("%w: user does not exist", apperr.ErrNotFound)
	ErrEmailTaken         = fmt.Errorf("%w: email is already registered", apperr.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)
	ErrMissingField       = fmt.Errorf("%w: missing required field", apperr.ErrValidation)
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email address", apperr.ErrValidation)
	ErrWeakPassword       = fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, MinPasswordLength)
)

const MinPasswordLength = 6

type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
