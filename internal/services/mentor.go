package services

import (
	"context"
	"fmt"

	"github.com/mentorhub/apiserver/types"
)

// MentorRepository defines persistence operations for mentors.
type MentorRepository interface {
	GetByID(ctx context.Context, id int) (types.Mentor, error)
	GetByEmail(ctx context.Context, email string) (types.Mentor, error)
	List(ctx context.Context, offset, limit int) ([]types.Mentor, int, error)
	Create(ctx context.Context, mentor types.Mentor) (types.Mentor, error)
	Update(ctx context.Context, mentor types.Mentor) (types.Mentor, error)
	SetStatus(ctx context.Context, id int, status string) error
}

// MentorService encapsulates mentor use-cases.
type MentorService struct {
	repo MentorRepository
}

func NewMentorService(repo MentorRepository) *MentorService {
	return &MentorService{repo: repo}
}

func (s *MentorService) GetByID(ctx context.Context, id int) (types.Mentor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MentorService) GetByEmail(ctx context.Context, email string) (types.Mentor, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *MentorService) List(ctx context.Context, offset, limit int) ([]types.Mentor, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// Create registers a mentor; new mentors always start pending.
func (s *MentorService) Create(ctx context.Context, mentor types.Mentor) (types.Mentor, error) {
	mentor.Status = types.MentorPending
	return s.repo.Create(ctx, mentor)
}

func (s *MentorService) Update(ctx context.Context, mentor types.Mentor) (types.Mentor, error) {
	return s.repo.Update(ctx, mentor)
}

// SetStatus transitions a mentor between pending/active/inactive.
// Reserved to admins at the route layer.
func (s *MentorService) SetStatus(ctx context.Context, id int, status string) error {
	switch status {
	case types.MentorPending, types.MentorActive, types.MentorInactive:
	default:
		return fmt.Errorf("%w: unknown mentor status %q", ErrValidation, status)
	}
	return s.repo.SetStatus(ctx, id, status)
}
