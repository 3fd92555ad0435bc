package income_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/income"
)

var now = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

func newService(repo income.Repository) *income.Service {
	return income.NewService(repo, income.WithClock(func() time.Time { return now }))
}

func TestService_Set(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		month     string
		amount    string
		setupMock func(m *income.MockRepository)
		wantMonth string
		wantErr   error
	}{
		{
			name:   "DefaultsToCurrentMonth",
			amount: "2500",
			setupMock: func(m *income.MockRepository) {
				m.EXPECT().UpsertIncome(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantMonth: "2024-01",
		},
		{
			name:   "ExplicitMonth",
			month:  "2023-12",
			amount: "1800.50",
			setupMock: func(m *income.MockRepository) {
				m.EXPECT().UpsertIncome(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantMonth: "2023-12",
		},
		{
			name:    "ZeroAmount",
			amount:  "0",
			wantErr: income.ErrInvalidAmount,
		},
		{
			name:    "MalformedMonth",
			month:   "2023-13",
			amount:  "10",
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := income.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := newService(repo).Set(context.Background(), userID, tt.month, decimal.RequireFromString(tt.amount))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantMonth, got.Month)
			assert.Equal(t, userID, got.UserID)
		})
	}
}

func TestService_Get(t *testing.T) {
	userID := uuid.New()

	t.Run("Unset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := income.NewMockRepository(ctrl)
		repo.EXPECT().GetIncome(gomock.Any(), userID, "2024-01").Return(nil, income.ErrNotFound)

		got, err := newService(repo).Get(context.Background(), userID, "")
		require.NoError(t, err)
		assert.True(t, got.Amount.IsZero())
		assert.Equal(t, "2024-01", got.Month)
	})

	t.Run("Stored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := income.NewMockRepository(ctrl)
		repo.EXPECT().GetIncome(gomock.Any(), userID, "2023-07").Return(&income.Income{
			UserID: userID, Month: "2023-07", Amount: decimal.RequireFromString("3000"),
		}, nil)

		got, err := newService(repo).Get(context.Background(), userID, "2023-07")
		require.NoError(t, err)
		assert.Equal(t, "3000", got.Amount.String())
	})
}
