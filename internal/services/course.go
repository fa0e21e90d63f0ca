package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/types"
)

// CourseRepository defines persistence operations for courses and their
// enrollment edges.
type CourseRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Course, int, error)
	Get(ctx context.Context, id int) (types.Course, error)
	Create(ctx context.Context, course types.Course) (types.Course, error)
	Update(ctx context.Context, course types.Course) (types.Course, error)
	Delete(ctx context.Context, id int) error
	Enroll(ctx context.Context, enrollment types.CourseEnrollment) (types.CourseEnrollment, error)
	EnrollmentsByUser(ctx context.Context, userID int) ([]types.CourseEnrollment, error)
}

// CourseService encapsulates course use-cases including the premium
// enrollment gate.
type CourseService struct {
	repo     CourseRepository
	payments PaymentRepository
	bus      *events.Bus
	logger   *slog.Logger
}

func NewCourseService(repo CourseRepository, payments PaymentRepository, bus *events.Bus, logger *slog.Logger) *CourseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseService{repo: repo, payments: payments, bus: bus, logger: logger}
}

func (s *CourseService) List(ctx context.Context, offset, limit int) ([]types.Course, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *CourseService) Get(ctx context.Context, id int) (types.Course, error) {
	return s.repo.Get(ctx, id)
}

// Create publishes a course for the given mentor. Only active mentors
// may publish.
func (s *CourseService) Create(ctx context.Context, mentor types.Mentor, course types.Course) (types.Course, error) {
	if mentor.Status != types.MentorActive {
		return types.Course{}, ErrMentorNotActive
	}
	if strings.TrimSpace(course.Title) == "" {
		return types.Course{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	course.MentorID = mentor.ID
	return s.repo.Create(ctx, course)
}

func (s *CourseService) Update(ctx context.Context, course types.Course) (types.Course, error) {
	if strings.TrimSpace(course.Title) == "" {
		return types.Course{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	return s.repo.Update(ctx, course)
}

// Delete removes the course; enrollment edges cascade with it.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Enroll creates the user's enrollment edge for a course. Premium
// courses require a premium account or a completed payment by this user
// for this course; the payment check is the boundary to the external
// gateway, which only ever talks to us through recorded payment rows.
func (s *CourseService) Enroll(ctx context.Context, user types.User, courseID int, paymentID *int) (types.CourseEnrollment, error) {
	course, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return types.CourseEnrollment{}, err
	}

	if course.Premium && !user.Premium {
		if paymentID == nil {
			return types.CourseEnrollment{}, ErrPaymentRequired
		}
		payment, err := s.payments.Get(ctx, *paymentID)
		if err != nil {
			return types.CourseEnrollment{}, errors.Join(ErrPaymentRequired, err)
		}
		if payment.UserID != user.ID || payment.CourseID != courseID || payment.Status != types.PaymentCompleted {
			return types.CourseEnrollment{}, ErrPaymentRequired
		}
	}

	enrollment, err := s.repo.Enroll(ctx, types.CourseEnrollment{
		CourseID:  courseID,
		UserID:    user.ID,
		PaymentID: paymentID,
	})
	if err != nil {
		return types.CourseEnrollment{}, err
	}

	s.bus.Emit(ctx, events.CourseEnrolled, enrollment)
	return enrollment, nil
}

func (s *CourseService) EnrollmentsByUser(ctx context.Context, userID int) ([]types.CourseEnrollment, error) {
	return s.repo.EnrollmentsByUser(ctx, userID)
}
