package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id, userID uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error

	// DeleteCategory removes the user's expenses in the category and then the
	// category itself, atomically. It returns the number of expenses removed.
	DeleteCategory(ctx context.Context, id, userID uuid.UUID) (int64, error)
}

type Service struct {
	repo  Repository
	vocab Vocabulary
}

func NewService(repo Repository, vocab Vocabulary) *Service {
	return &Service{repo: repo, vocab: vocab}
}

type CreateParams struct {
	UserID      uuid.UUID
	Title       string
	Description string
}

type UpdateParams struct {
	Title       *string
	Description *string
}

// Titles returns the vocabulary a category title must come from.
func (s *Service) Titles() []string {
	return s.vocab.Titles()
}

func (s *Service) Validate(title string) error {
	return s.vocab.Validate(title)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	title := strings.TrimSpace(params.Title)
	if err := s.vocab.Validate(title); err != nil {
		return nil, err
	}

	c := &Category{
		UserID:      params.UserID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id, userID)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Category, error) {
	return s.repo.ListCategories(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if err := s.vocab.Validate(title); err != nil {
			return nil, err
		}

		c.Title = title
	}

	if params.Description != nil {
		c.Description = strings.TrimSpace(*params.Description)
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete removes a category together with every expense assigned to it.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	removed, err := s.repo.DeleteCategory(ctx, id, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrConsistency) {
			slog.Error("category delete left inconsistent state",
				"category_id", id, "user_id", userID, "error", err)
		}

		return fmt.Errorf("deleting category: %w", err)
	}

	slog.Info("category deleted", "category_id", id, "user_id", userID, "expenses_removed", removed)

	return nil
}
