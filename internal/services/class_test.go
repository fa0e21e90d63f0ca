package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

type fakeClassRepo struct {
	classes     map[int]types.Class
	enrollments map[int][]types.ClassEnrollment
	nextID      int
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{
		classes:     map[int]types.Class{},
		enrollments: map[int][]types.ClassEnrollment{},
		nextID:      1,
	}
}

func (f *fakeClassRepo) List(_ context.Context, offset, limit int) ([]types.Class, int, error) {
	var out []types.Class
	for _, c := range f.classes {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeClassRepo) Get(_ context.Context, id int) (types.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return types.Class{}, store.ErrNotFound
	}
	return class, nil
}

func (f *fakeClassRepo) Create(_ context.Context, class types.Class) (types.Class, error) {
	class.ID = f.nextID
	f.nextID++
	f.classes[class.ID] = class
	return class, nil
}

func (f *fakeClassRepo) Update(_ context.Context, class types.Class) (types.Class, error) {
	if _, ok := f.classes[class.ID]; !ok {
		return types.Class{}, store.ErrNotFound
	}
	f.classes[class.ID] = class
	return class, nil
}

func (f *fakeClassRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.classes[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.classes, id)
	delete(f.enrollments, id)
	return nil
}

func (f *fakeClassRepo) GetEnrollment(_ context.Context, classID, userID int) (types.ClassEnrollment, error) {
	for _, e := range f.enrollments[classID] {
		if e.UserID == userID {
			return e, nil
		}
	}
	return types.ClassEnrollment{}, store.ErrNotFound
}

// Enroll mirrors the store's ON CONFLICT DO NOTHING upsert: an existing
// edge is returned unchanged.
func (f *fakeClassRepo) Enroll(_ context.Context, enrollment types.ClassEnrollment) (types.ClassEnrollment, error) {
	for _, e := range f.enrollments[enrollment.ClassID] {
		if e.UserID == enrollment.UserID {
			return e, nil
		}
	}
	enrollment.ID = f.nextID
	f.nextID++
	f.enrollments[enrollment.ClassID] = append(f.enrollments[enrollment.ClassID], enrollment)
	return enrollment, nil
}

func (f *fakeClassRepo) EnrolledCount(_ context.Context, classID int) (int, error) {
	count := 0
	for _, e := range f.enrollments[classID] {
		if e.Status == types.EnrollmentEnrolled {
			count++
		}
	}
	return count, nil
}

func (f *fakeClassRepo) Waitlist(_ context.Context, classID int) ([]int, error) {
	var ids []int
	for _, e := range f.enrollments[classID] {
		if e.Status == types.EnrollmentWaitlisted {
			ids = append(ids, e.UserID)
		}
	}
	return ids, nil
}

func testClassService(repo ClassRepository) *ClassService {
	return NewClassService(repo, events.NewBus(nil, nil), nil)
}

func activeMentor() types.Mentor {
	return types.Mentor{ID: 1, Status: types.MentorActive}
}

func scheduledClass(maxStudents int) types.Class {
	return types.Class{
		Title:       "Intro to Algebra",
		StartsAt:    time.Now().Add(time.Hour),
		EndsAt:      time.Now().Add(2 * time.Hour),
		MaxStudents: maxStudents,
	}
}

func TestClassCreateRequiresActiveMentor(t *testing.T) {
	svc := testClassService(newFakeClassRepo())

	_, err := svc.Create(context.Background(), types.Mentor{ID: 1, Status: types.MentorPending}, scheduledClass(10))
	assert.ErrorIs(t, err, ErrMentorNotActive)

	created, err := svc.Create(context.Background(), activeMentor(), scheduledClass(10))
	require.NoError(t, err)
	assert.Equal(t, 1, created.MentorID)
	assert.Equal(t, types.ClassScheduled, created.Status)
}

func TestClassCreateValidates(t *testing.T) {
	svc := testClassService(newFakeClassRepo())

	missing := scheduledClass(10)
	missing.Title = " "
	_, err := svc.Create(context.Background(), activeMentor(), missing)
	assert.ErrorIs(t, err, ErrValidation)

	inverted := scheduledClass(10)
	inverted.EndsAt = inverted.StartsAt.Add(-time.Hour)
	_, err = svc.Create(context.Background(), activeMentor(), inverted)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClassEnrollClosedStates(t *testing.T) {
	repo := newFakeClassRepo()
	svc := testClassService(repo)

	for _, status := range []string{types.ClassCancelled, types.ClassEnded} {
		class := scheduledClass(10)
		class.Status = status
		class, err := repo.Create(context.Background(), class)
		require.NoError(t, err)

		_, err = svc.Enroll(context.Background(), 1, class.ID)
		assert.ErrorIs(t, err, ErrClassClosed, "status %s", status)
	}
}

func TestClassEnrollAfterEndIsClosed(t *testing.T) {
	repo := newFakeClassRepo()
	svc := testClassService(repo)

	class := scheduledClass(10)
	class.StartsAt = time.Now().Add(-2 * time.Hour)
	class.EndsAt = time.Now().Add(-time.Hour)
	class.Status = types.ClassScheduled
	class, err := repo.Create(context.Background(), class)
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), 1, class.ID)
	assert.ErrorIs(t, err, ErrClassClosed)
}

func TestClassEnrollCapacityAndWaitlist(t *testing.T) {
	repo := newFakeClassRepo()
	svc := testClassService(repo)

	class := scheduledClass(2)
	class.Status = types.ClassScheduled
	class, err := repo.Create(context.Background(), class)
	require.NoError(t, err)

	first, err := svc.Enroll(context.Background(), 10, class.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EnrollmentEnrolled, first.Status)

	second, err := svc.Enroll(context.Background(), 11, class.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EnrollmentEnrolled, second.Status)

	third, err := svc.Enroll(context.Background(), 12, class.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EnrollmentWaitlisted, third.Status)

	waitlist, err := svc.Waitlist(context.Background(), class.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, waitlist)
}

func TestClassEnrollIsIdempotent(t *testing.T) {
	repo := newFakeClassRepo()
	svc := testClassService(repo)

	class := scheduledClass(1)
	class.Status = types.ClassScheduled
	class, err := repo.Create(context.Background(), class)
	require.NoError(t, err)

	enrolled, err := svc.Enroll(context.Background(), 10, class.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EnrollmentEnrolled, enrolled.Status)

	// The seat is now taken; a repeat call from the same user must keep
	// the enrolled status rather than waitlist them.
	again, err := svc.Enroll(context.Background(), 10, class.ID)
	require.NoError(t, err)
	assert.Equal(t, enrolled.ID, again.ID)
	assert.Equal(t, types.EnrollmentEnrolled, again.Status)

	waitlisted, err := svc.Enroll(context.Background(), 11, class.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EnrollmentWaitlisted, waitlisted.Status)

	againWaitlisted, err := svc.Enroll(context.Background(), 11, class.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlisted.ID, againWaitlisted.ID)
	assert.Equal(t, types.EnrollmentWaitlisted, againWaitlisted.Status)
}

func TestClassEnrollUnknownClass(t *testing.T) {
	svc := testClassService(newFakeClassRepo())

	_, err := svc.Enroll(context.Background(), 1, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClassUnlimitedCapacity(t *testing.T) {
	repo := newFakeClassRepo()
	svc := testClassService(repo)

	class := scheduledClass(0)
	class.Status = types.ClassScheduled
	class, err := repo.Create(context.Background(), class)
	require.NoError(t, err)

	for userID := 1; userID <= 50; userID++ {
		enrollment, err := svc.Enroll(context.Background(), userID, class.ID)
		require.NoError(t, err)
		assert.Equal(t, types.EnrollmentEnrolled, enrollment.Status)
	}
}
