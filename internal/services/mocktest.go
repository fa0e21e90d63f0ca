package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mentorhub/apiserver/types"
)

// MockTestRepository defines persistence operations for mock tests and
// attempts.
type MockTestRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.MockTest, int, error)
	Get(ctx context.Context, id int) (types.MockTest, error)
	Create(ctx context.Context, test types.MockTest) (types.MockTest, error)
	Update(ctx context.Context, test types.MockTest) (types.MockTest, error)
	Delete(ctx context.Context, id int) error
	AddAttempt(ctx context.Context, attempt types.TestAttempt) (types.TestAttempt, error)
	AttemptsByUser(ctx context.Context, mockTestID, userID int) ([]types.TestAttempt, error)
}

// MockTestService encapsulates mock-test use-cases including server-side
// grading.
type MockTestService struct {
	repo MockTestRepository
}

func NewMockTestService(repo MockTestRepository) *MockTestService {
	return &MockTestService{repo: repo}
}

func (s *MockTestService) List(ctx context.Context, offset, limit int) ([]types.MockTest, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *MockTestService) Get(ctx context.Context, id int) (types.MockTest, error) {
	return s.repo.Get(ctx, id)
}

// Create publishes a mock test for the given mentor. Only active
// mentors may publish.
func (s *MockTestService) Create(ctx context.Context, mentor types.Mentor, test types.MockTest) (types.MockTest, error) {
	if mentor.Status != types.MentorActive {
		return types.MockTest{}, ErrMentorNotActive
	}
	if err := validateMockTest(test); err != nil {
		return types.MockTest{}, err
	}
	test.MentorID = mentor.ID
	return s.repo.Create(ctx, test)
}

func (s *MockTestService) Update(ctx context.Context, test types.MockTest) (types.MockTest, error) {
	if err := validateMockTest(test); err != nil {
		return types.MockTest{}, err
	}
	return s.repo.Update(ctx, test)
}

func (s *MockTestService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// SubmitAttempt grades the submitted answer indexes against the stored
// question bank and records the attempt. Grading happens server-side so
// answers never leave the service.
func (s *MockTestService) SubmitAttempt(ctx context.Context, userID, mockTestID int, answers []int) (types.TestAttempt, error) {
	test, err := s.repo.Get(ctx, mockTestID)
	if err != nil {
		return types.TestAttempt{}, err
	}
	if len(answers) != len(test.Questions) {
		return types.TestAttempt{}, fmt.Errorf("%w: expected %d answers, got %d", ErrValidation, len(test.Questions), len(answers))
	}

	score := 0
	for i, question := range test.Questions {
		if answers[i] == question.Answer {
			score++
		}
	}

	return s.repo.AddAttempt(ctx, types.TestAttempt{
		MockTestID: mockTestID,
		UserID:     userID,
		Answers:    answers,
		Score:      score,
		Total:      len(test.Questions),
	})
}

// AttemptsByUser lists the caller's attempts against a test.
func (s *MockTestService) AttemptsByUser(ctx context.Context, mockTestID, userID int) ([]types.TestAttempt, error) {
	if _, err := s.repo.Get(ctx, mockTestID); err != nil {
		return nil, err
	}
	return s.repo.AttemptsByUser(ctx, mockTestID, userID)
}

func validateMockTest(test types.MockTest) error {
	if strings.TrimSpace(test.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(test.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrValidation)
	}
	for i, question := range test.Questions {
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: question %d needs at least two options", ErrValidation, i)
		}
		if question.Answer < 0 || question.Answer >= len(question.Options) {
			return fmt.Errorf("%w: question %d answer out of range", ErrValidation, i)
		}
	}
	return nil
}
