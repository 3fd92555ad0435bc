package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

func newService(repo user.Repository) *user.Service {
	return user.NewService(repo, user.WithHashCost(bcrypt.MinCost))
}

func TestService_Register(t *testing.T) {
	valid := user.RegisterParams{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.COM ",
		Password:  "secret1",
	}

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *user.User) error {
				u.ID = uuid.New()
				return nil
			})

		got, err := newService(repo).Register(context.Background(), valid)
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", got.Email)
		assert.Equal(t, "Ada Lovelace", got.DisplayName())
		assert.NotEqual(t, valid.Password, got.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte(valid.Password)))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(user.ErrEmailTaken)

		_, err := newService(repo).Register(context.Background(), valid)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	invalid := []struct {
		name    string
		mutate  func(p *user.RegisterParams)
		wantErr error
	}{
		{"MissingFirstName", func(p *user.RegisterParams) { p.FirstName = " " }, user.ErrMissingField},
		{"MissingPassword", func(p *user.RegisterParams) { p.Password = "" }, user.ErrMissingField},
		{"BadEmail", func(p *user.RegisterParams) { p.Email = "not-an-email" }, user.ErrInvalidEmail},
		{"DisplayNameEmail", func(p *user.RegisterParams) { p.Email = "Ada <ada@example.com>" }, user.ErrInvalidEmail},
		{"ShortPassword", func(p *user.RegisterParams) { p.Password = "12345" }, user.ErrWeakPassword},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := user.NewMockRepository(ctrl)

			params := valid
			tt.mutate(&params)

			_, err := newService(repo).Register(context.Background(), params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &user.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: string(hash)}

	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(m *user.MockRepository)
		wantErr   error
		wantFail  bool
	}{
		{
			name:     "Success",
			email:    "ADA@example.com",
			password: "secret1",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByEmail(gomock.Any(), "ada@example.com").Return(stored, nil)
			},
		},
		{
			name:     "WrongPassword",
			email:    "ada@example.com",
			password: "secret2",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByEmail(gomock.Any(), "ada@example.com").Return(stored, nil)
			},
			wantErr: user.ErrInvalidCredentials,
		},
		{
			name:     "UnknownEmail",
			email:    "bob@example.com",
			password: "secret1",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByEmail(gomock.Any(), "bob@example.com").Return(nil, user.ErrNotFound)
			},
			wantErr: user.ErrInvalidCredentials,
		},
		{
			name:     "StorageFailure",
			email:    "ada@example.com",
			password: "secret1",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := user.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := newService(repo).Authenticate(context.Background(), tt.email, tt.password)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)
			case tt.wantFail:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, apperr.ErrUnauthorized)
			default:
				require.NoError(t, err)
				assert.Equal(t, stored.ID, got.ID)
			}
		})
	}
}
