package services

import (
	"context"

	"github.com/mentorhub/apiserver/types"
)

// SchoolRepository defines persistence operations for schools and
// rosters.
type SchoolRepository interface {
	GetByID(ctx context.Context, id int) (types.School, error)
	GetByEmail(ctx context.Context, email string) (types.School, error)
	Create(ctx context.Context, school types.School) (types.School, error)
	Roster(ctx context.Context, schoolID int) ([]types.User, error)
	AddToRoster(ctx context.Context, schoolID, userID int) error
	RemoveFromRoster(ctx context.Context, schoolID, userID int) error
}

// SchoolService encapsulates school use-cases.
type SchoolService struct {
	repo  SchoolRepository
	users UserRepository
}

func NewSchoolService(repo SchoolRepository, users UserRepository) *SchoolService {
	return &SchoolService{repo: repo, users: users}
}

func (s *SchoolService) GetByID(ctx context.Context, id int) (types.School, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SchoolService) GetByEmail(ctx context.Context, email string) (types.School, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *SchoolService) Create(ctx context.Context, school types.School) (types.School, error) {
	return s.repo.Create(ctx, school)
}

func (s *SchoolService) Roster(ctx context.Context, schoolID int) ([]types.User, error) {
	return s.repo.Roster(ctx, schoolID)
}

// AddToRoster adds an existing student to the school's roster. The user
// lookup happens first so an unknown student surfaces as NotFound, not
// as a dangling roster row.
func (s *SchoolService) AddToRoster(ctx context.Context, schoolID, userID int) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.repo.AddToRoster(ctx, schoolID, userID)
}

func (s *SchoolService) RemoveFromRoster(ctx context.Context, schoolID, userID int) error {
	return s.repo.RemoveFromRoster(ctx, schoolID, userID)
}
