package matching

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the user's longest matching rule, newest first on
	// ties, or nil when nothing matches.
	FindMatch(ctx context.Context, userID uuid.UUID, rawDescription string) (*Rule, error)
	CreateRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context, userID uuid.UUID) ([]*Rule, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a category for the given raw description.
// Returns uuid.Nil if no rule matches.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, rawDescription string) (uuid.UUID, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return uuid.Nil, nil
	}

	r, err := s.repo.FindMatch(ctx, userID, rawDescription)
	if err != nil {
		return uuid.Nil, err
	}

	if r == nil {
		return uuid.Nil, nil
	}

	return r.CategoryID, nil
}

// Learn remembers that descriptions containing rawPattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, rawPattern string, categoryID uuid.UUID) (*Rule, error) {
	pattern := strings.TrimSpace(rawPattern)
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	r := &Rule{UserID: userID, RawPattern: pattern, CategoryID: categoryID}
	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Rule, error) {
	return s.repo.ListRules(ctx, userID)
}
