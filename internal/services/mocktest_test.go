package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

type fakeMockTestRepo struct {
	tests    map[int]types.MockTest
	attempts []types.TestAttempt
	nextID   int
}

func newFakeMockTestRepo() *fakeMockTestRepo {
	return &fakeMockTestRepo{tests: map[int]types.MockTest{}, nextID: 1}
}

func (f *fakeMockTestRepo) List(_ context.Context, offset, limit int) ([]types.MockTest, int, error) {
	var out []types.MockTest
	for _, test := range f.tests {
		out = append(out, test)
	}
	return out, len(out), nil
}

func (f *fakeMockTestRepo) Get(_ context.Context, id int) (types.MockTest, error) {
	test, ok := f.tests[id]
	if !ok {
		return types.MockTest{}, store.ErrNotFound
	}
	return test, nil
}

func (f *fakeMockTestRepo) Create(_ context.Context, test types.MockTest) (types.MockTest, error) {
	test.ID = f.nextID
	f.nextID++
	f.tests[test.ID] = test
	return test, nil
}

func (f *fakeMockTestRepo) Update(_ context.Context, test types.MockTest) (types.MockTest, error) {
	if _, ok := f.tests[test.ID]; !ok {
		return types.MockTest{}, store.ErrNotFound
	}
	f.tests[test.ID] = test
	return test, nil
}

func (f *fakeMockTestRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.tests[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tests, id)
	return nil
}

func (f *fakeMockTestRepo) AddAttempt(_ context.Context, attempt types.TestAttempt) (types.TestAttempt, error) {
	attempt.ID = f.nextID
	f.nextID++
	f.attempts = append(f.attempts, attempt)
	return attempt, nil
}

func (f *fakeMockTestRepo) AttemptsByUser(_ context.Context, mockTestID, userID int) ([]types.TestAttempt, error) {
	var out []types.TestAttempt
	for _, a := range f.attempts {
		if a.MockTestID == mockTestID && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func sampleQuestions() []types.Question {
	return []types.Question{
		{Text: "2 + 2?", Options: []string{"3", "4", "5"}, Answer: 1},
		{Text: "3 * 3?", Options: []string{"6", "9"}, Answer: 1},
		{Text: "10 / 2?", Options: []string{"5", "2"}, Answer: 0},
	}
}

func TestMockTestCreateValidatesQuestions(t *testing.T) {
	svc := NewMockTestService(newFakeMockTestRepo())

	cases := []struct {
		name      string
		questions []types.Question
	}{
		{"no questions", nil},
		{"single option", []types.Question{{Text: "q", Options: []string{"only"}, Answer: 0}}},
		{"answer out of range", []types.Question{{Text: "q", Options: []string{"a", "b"}, Answer: 2}}},
		{"negative answer", []types.Question{{Text: "q", Options: []string{"a", "b"}, Answer: -1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), activeMentor(), types.MockTest{
				Title:     "Arithmetic",
				Questions: tc.questions,
			})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSubmitAttemptGradesServerSide(t *testing.T) {
	repo := newFakeMockTestRepo()
	svc := NewMockTestService(repo)

	test, err := svc.Create(context.Background(), activeMentor(), types.MockTest{
		Title:     "Arithmetic",
		Questions: sampleQuestions(),
	})
	require.NoError(t, err)

	attempt, err := svc.SubmitAttempt(context.Background(), 7, test.ID, []int{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, attempt.Score)
	assert.Equal(t, 3, attempt.Total)
	assert.Equal(t, []int{1, 0, 0}, attempt.Answers)
}

func TestSubmitAttemptAnswerCountMustMatch(t *testing.T) {
	repo := newFakeMockTestRepo()
	svc := NewMockTestService(repo)

	test, err := svc.Create(context.Background(), activeMentor(), types.MockTest{
		Title:     "Arithmetic",
		Questions: sampleQuestions(),
	})
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(context.Background(), 7, test.ID, []int{1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAttemptsByUserScopedToCaller(t *testing.T) {
	repo := newFakeMockTestRepo()
	svc := NewMockTestService(repo)

	test, err := svc.Create(context.Background(), activeMentor(), types.MockTest{
		Title:     "Arithmetic",
		Questions: sampleQuestions(),
	})
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(context.Background(), 7, test.ID, []int{1, 1, 0})
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(context.Background(), 8, test.ID, []int{0, 0, 0})
	require.NoError(t, err)

	attempts, err := svc.AttemptsByUser(context.Background(), test.ID, 7)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 7, attempts[0].UserID)
}

func TestPublicStripsAnswers(t *testing.T) {
	test := types.MockTest{Questions: sampleQuestions()}

	public := test.Public()
	for _, q := range public.Questions {
		assert.Equal(t, -1, q.Answer)
	}
	// The original is untouched.
	assert.Equal(t, 1, test.Questions[0].Answer)
}
