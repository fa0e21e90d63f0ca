package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mentorhub/apiserver/types"
)

// CompetitionRepository defines persistence operations for competitions.
type CompetitionRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Competition, int, error)
	Get(ctx context.Context, id int) (types.Competition, error)
	Create(ctx context.Context, competition types.Competition) (types.Competition, error)
	Update(ctx context.Context, competition types.Competition) (types.Competition, error)
	Delete(ctx context.Context, id int) error
	Join(ctx context.Context, competitionID, userID int) error
}

// CompetitionService encapsulates competition use-cases.
type CompetitionService struct {
	repo CompetitionRepository
}

func NewCompetitionService(repo CompetitionRepository) *CompetitionService {
	return &CompetitionService{repo: repo}
}

func (s *CompetitionService) List(ctx context.Context, offset, limit int) ([]types.Competition, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *CompetitionService) Get(ctx context.Context, id int) (types.Competition, error) {
	return s.repo.Get(ctx, id)
}

// Create hosts a competition under the given owner reference; any
// principal kind may host.
func (s *CompetitionService) Create(ctx context.Context, owner types.OwnerRef, competition types.Competition) (types.Competition, error) {
	if err := validateCompetition(competition); err != nil {
		return types.Competition{}, err
	}
	competition.Owner = owner
	return s.repo.Create(ctx, competition)
}

func (s *CompetitionService) Update(ctx context.Context, competition types.Competition) (types.Competition, error) {
	if err := validateCompetition(competition); err != nil {
		return types.Competition{}, err
	}
	return s.repo.Update(ctx, competition)
}

func (s *CompetitionService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Join registers a user as a participant. Re-joining is a no-op.
func (s *CompetitionService) Join(ctx context.Context, competitionID, userID int) error {
	if _, err := s.repo.Get(ctx, competitionID); err != nil {
		return err
	}
	return s.repo.Join(ctx, competitionID, userID)
}

func validateCompetition(competition types.Competition) error {
	if strings.TrimSpace(competition.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !competition.EndsAt.After(competition.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", ErrValidation)
	}
	return nil
}
