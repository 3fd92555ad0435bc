package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/category"
)

var defaultTitles = []string{"Groceries", "Leisure", "Electronics", "Utilities", "Clothing", "Health", "Others"}

func TestVocabulary_Validate(t *testing.T) {
	vocab := category.NewVocabulary(defaultTitles)

	type testCase struct {
		name        string
		title       string
		wantErr     bool
		wantMessage string
	}

	tests := []testCase{
		{name: "Member", title: "Groceries"},
		{name: "Last", title: "Others"},
		{
			name:        "Typo",
			title:       "Grocerys",
			wantErr:     true,
			wantMessage: `did you mean "Groceries"?`,
		},
		{
			name:        "WrongCase",
			title:       "health",
			wantErr:     true,
			wantMessage: `did you mean "Health"?`,
		},
		{
			name:        "Unrelated",
			title:       "Mortgage",
			wantErr:     true,
			wantMessage: "must be one of: Groceries, Leisure, Electronics, Utilities, Clothing, Health, Others",
		},
		{name: "Empty", title: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vocab.Validate(tt.title)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, category.ErrInvalidTitle)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMessage)
		})
	}
}

func TestVocabulary_UnrelatedTitleHasNoSuggestion(t *testing.T) {
	err := category.NewVocabulary(defaultTitles).Validate("Mortgage")
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestNewVocabulary_TrimsAndDeduplicates(t *testing.T) {
	vocab := category.NewVocabulary([]string{" Food ", "Rent", "Food", ""})

	assert.Equal(t, []string{"Food", "Rent"}, vocab.Titles())
	assert.NoError(t, vocab.Validate("Food"))
}
