package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/types"
)

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	Get(ctx context.Context, id int) (types.Payment, error)
	ListByUser(ctx context.Context, userID int) ([]types.Payment, error)
	Create(ctx context.Context, payment types.Payment) (types.Payment, error)
}

// PaymentService records the outcome of externally processed payments.
// It does not talk to any payment processor.
type PaymentService struct {
	repo    PaymentRepository
	courses CourseRepository
	bus     *events.Bus
	logger  *slog.Logger
}

func NewPaymentService(repo PaymentRepository, courses CourseRepository, bus *events.Bus, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{repo: repo, courses: courses, bus: bus, logger: logger}
}

func (s *PaymentService) Get(ctx context.Context, id int) (types.Payment, error) {
	return s.repo.Get(ctx, id)
}

func (s *PaymentService) ListByUser(ctx context.Context, userID int) ([]types.Payment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Record persists a payment record for the given user. The referenced
// course must exist; the status must be a known value.
func (s *PaymentService) Record(ctx context.Context, userID int, payment types.Payment) (types.Payment, error) {
	switch payment.Status {
	case types.PaymentPending, types.PaymentCompleted, types.PaymentFailed:
	default:
		return types.Payment{}, fmt.Errorf("%w: unknown payment status %q", ErrValidation, payment.Status)
	}
	if payment.AmountCents < 0 {
		return types.Payment{}, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}

	course, err := s.courses.Get(ctx, payment.CourseID)
	if err != nil {
		return types.Payment{}, err
	}

	payment.UserID = userID
	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		return types.Payment{}, err
	}

	s.bus.Emit(ctx, events.PaymentRecorded, map[string]any{
		"payment_id": created.ID,
		"user_id":    created.UserID,
		"course_id":  course.ID,
		"status":     created.Status,
	})
	return created, nil
}
