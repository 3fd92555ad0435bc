package category

import (
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

var (
	ErrNotFound       = fmt.Errorf("%w: category does not exist", apperr.ErrNotFound)
	ErrDuplicateTitle = fmt.Errorf("%w: category already exists", apperr.ErrConflict)
	ErrInvalidTitle   = fmt.Errorf("%w: invalid category", apperr.ErrValidation)
	// ErrLedgerUnderflow is returned when a delta would drive a running total below zero.
	ErrLedgerUnderflow = fmt.Errorf("%w: category ledger would go negative", apperr.ErrConsistency)
	// ErrOrphanedExpenses is returned when expenses survive the deletion of their category.
	ErrOrphanedExpenses = fmt.Errorf("%w: expenses left behind by category delete", apperr.ErrConsistency)
)

// Category groups a user's expenses under one title from the vocabulary.
// TotalAmount and ExpenseCount form the ledger: they always equal the sum and
// count of the expenses currently assigned to the category.
type Category struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	Description  string
	TotalAmount  decimal.Decimal
	ExpenseCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Delta is a change to a category's running totals.
type Delta struct {
	CategoryID uuid.UUID
	UserID     uuid.UUID
	Amount     decimal.Decimal
	Count      int
}

// Vocabulary is the closed set of titles a category may carry.
type Vocabulary struct {
	titles []string
	set    map[string]struct{}
}

// maxSuggestDistance bounds how far a rejected title may be from a suggestion.
const maxSuggestDistance = 2

func NewVocabulary(titles []string) Vocabulary {
	v := Vocabulary{set: make(map[string]struct{}, len(titles))}

	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}

		if _, dup := v.set[t]; dup {
			continue
		}

		v.set[t] = struct{}{}
		v.titles = append(v.titles, t)
	}

	return v
}

// Titles returns the allowed titles in configuration order.
func (v Vocabulary) Titles() []string {
	out := make([]string, len(v.titles))
	copy(out, v.titles)

	return out
}

// Validate checks that title belongs to the vocabulary.
func (v Vocabulary) Validate(title string) error {
	if _, ok := v.set[title]; ok {
		return nil
	}

	err := fmt.Errorf("%w %q: must be one of: %s", ErrInvalidTitle, title, strings.Join(v.titles, ", "))

	if s := v.suggest(title); s != "" {
		err = fmt.Errorf("%w (did you mean %q?)", err, s)
	}

	return err
}

func (v Vocabulary) suggest(title string) string {
	best, bestDist := "", maxSuggestDistance+1
	needle := strings.ToLower(strings.TrimSpace(title))

	for _, t := range v.titles {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(t))
		if d < bestDist {
			best, bestDist = t, d
		}
	}

	return best
}
