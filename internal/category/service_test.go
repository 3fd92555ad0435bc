package category_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/category"
)

func newService(ctrl *gomock.Controller) (*category.Service, *category.MockRepository) {
	repo := category.NewMockRepository(ctrl)
	return category.NewService(repo, category.NewVocabulary(defaultTitles)), repo
}

func TestService_Create(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name      string
		params    category.CreateParams
		setupMock func(m *category.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: category.CreateParams{UserID: userID, Title: " Groceries ", Description: "Weekly shop"},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					CreateCategory(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *category.Category) error {
						assert.Equal(t, "Groceries", c.Title)
						assert.Equal(t, userID, c.UserID)
						assert.True(t, c.TotalAmount.IsZero())
						assert.Zero(t, c.ExpenseCount)

						c.ID = uuid.New()
						c.CreatedAt = time.Now()

						return nil
					})
			},
		},
		{
			name:    "NotInVocabulary",
			params:  category.CreateParams{UserID: userID, Title: "Travel"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "DuplicateTitle",
			params: category.CreateParams{UserID: userID, Title: "Leisure"},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					CreateCategory(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("%w: %q", category.ErrDuplicateTitle, "Leisure"))
			},
			wantErr: apperr.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, repo := newService(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Update(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	existing := func() *category.Category {
		return &category.Category{ID: id, UserID: userID, Title: "Leisure", Description: "fun"}
	}

	t.Run("TitleAndDescription", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, repo := newService(ctrl)

		repo.EXPECT().GetCategory(gomock.Any(), id, userID).Return(existing(), nil)
		repo.EXPECT().
			UpdateCategory(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *category.Category) error {
				assert.Equal(t, "Health", c.Title)
				assert.Equal(t, "gym", c.Description)
				return nil
			})

		got, err := svc.Update(context.Background(), userID, id, category.UpdateParams{
			Title:       new("Health"),
			Description: new("gym"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Health", got.Title)
	})

	t.Run("InvalidTitle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, repo := newService(ctrl)

		repo.EXPECT().GetCategory(gomock.Any(), id, userID).Return(existing(), nil)

		_, err := svc.Update(context.Background(), userID, id, category.UpdateParams{Title: new("Travel")})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, repo := newService(ctrl)

		repo.EXPECT().GetCategory(gomock.Any(), id, userID).Return(nil, category.ErrNotFound)

		_, err := svc.Update(context.Background(), userID, id, category.UpdateParams{Description: new("x")})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	t.Run("Cascades", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, repo := newService(ctrl)

		repo.EXPECT().DeleteCategory(gomock.Any(), id, userID).Return(int64(2), nil)

		assert.NoError(t, svc.Delete(context.Background(), userID, id))
	})

	t.Run("ForeignOrMissing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, repo := newService(ctrl)

		repo.EXPECT().DeleteCategory(gomock.Any(), id, userID).Return(int64(0), category.ErrNotFound)

		err := svc.Delete(context.Background(), userID, id)
		assert.ErrorIs(t, err, category.ErrNotFound)
	})

	t.Run("Orphans", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, repo := newService(ctrl)

		repo.EXPECT().DeleteCategory(gomock.Any(), id, userID).Return(int64(0), category.ErrOrphanedExpenses)

		err := svc.Delete(context.Background(), userID, id)
		assert.ErrorIs(t, err, apperr.ErrConsistency)
	})
}
