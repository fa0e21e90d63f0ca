package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

type classRepoFake struct {
	classes     map[int]types.Class
	enrollments []types.ClassEnrollment
	nextID      int
}

func newClassRepoFake() *classRepoFake {
	return &classRepoFake{classes: map[int]types.Class{}, nextID: 1}
}

func (f *classRepoFake) List(_ context.Context, offset, limit int) ([]types.Class, int, error) {
	var out []types.Class
	for _, c := range f.classes {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *classRepoFake) Get(_ context.Context, id int) (types.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return types.Class{}, store.ErrNotFound
	}
	return class, nil
}

func (f *classRepoFake) Create(_ context.Context, class types.Class) (types.Class, error) {
	class.ID = f.nextID
	f.nextID++
	f.classes[class.ID] = class
	return class, nil
}

func (f *classRepoFake) Update(_ context.Context, class types.Class) (types.Class, error) {
	existing, ok := f.classes[class.ID]
	if !ok {
		return types.Class{}, store.ErrNotFound
	}
	class.MentorID = existing.MentorID
	f.classes[class.ID] = class
	return class, nil
}

func (f *classRepoFake) Delete(_ context.Context, id int) error {
	if _, ok := f.classes[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.classes, id)
	return nil
}

func (f *classRepoFake) GetEnrollment(_ context.Context, classID, userID int) (types.ClassEnrollment, error) {
	for _, e := range f.enrollments {
		if e.ClassID == classID && e.UserID == userID {
			return e, nil
		}
	}
	return types.ClassEnrollment{}, store.ErrNotFound
}

func (f *classRepoFake) Enroll(_ context.Context, enrollment types.ClassEnrollment) (types.ClassEnrollment, error) {
	for _, e := range f.enrollments {
		if e.ClassID == enrollment.ClassID && e.UserID == enrollment.UserID {
			return e, nil
		}
	}
	enrollment.ID = f.nextID
	f.nextID++
	f.enrollments = append(f.enrollments, enrollment)
	return enrollment, nil
}

func (f *classRepoFake) EnrolledCount(_ context.Context, classID int) (int, error) {
	count := 0
	for _, e := range f.enrollments {
		if e.ClassID == classID && e.Status == types.EnrollmentEnrolled {
			count++
		}
	}
	return count, nil
}

func (f *classRepoFake) Waitlist(_ context.Context, classID int) ([]int, error) {
	var out []int
	for _, e := range f.enrollments {
		if e.ClassID == classID && e.Status == types.EnrollmentWaitlisted {
			out = append(out, e.UserID)
		}
	}
	return out, nil
}

func newClassRouter(repo *classRepoFake) http.Handler {
	svc := services.NewClassService(repo, events.NewBus(nil, nil), nil)
	router := chi.NewRouter()
	router.Route("/classes", func(r chi.Router) {
		ClassRouter(r, svc)
	})
	return router
}

func seedClass(t *testing.T, repo *classRepoFake, maxStudents int, status string) types.Class {
	t.Helper()
	class, err := repo.Create(context.Background(), types.Class{
		MentorID:    1,
		Title:       "Office Hours",
		StartsAt:    time.Now().Add(time.Hour),
		EndsAt:      time.Now().Add(2 * time.Hour),
		MaxStudents: maxStudents,
		Status:      status,
	})
	require.NoError(t, err)
	return class
}

func TestClassEnrollCapacityAndWaitlist(t *testing.T) {
	repo := newClassRepoFake()
	router := newClassRouter(repo)
	class := seedClass(t, repo, 2, types.ClassScheduled)

	var enrollment types.ClassEnrollment
	for _, userID := range []int{10, 11} {
		rec := doJSON(t, router, http.MethodPost, "/classes/1/enroll", nil, userPrincipal(userID))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrollment))
		assert.Equal(t, types.EnrollmentEnrolled, enrollment.Status)
	}

	// The class is full; the next student lands on the waitlist.
	rec := doJSON(t, router, http.MethodPost, "/classes/1/enroll", nil, userPrincipal(12))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrollment))
	assert.Equal(t, types.EnrollmentWaitlisted, enrollment.Status)

	// Re-enrolling returns the existing edge unchanged.
	rec = doJSON(t, router, http.MethodPost, "/classes/1/enroll", nil, userPrincipal(10))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrollment))
	assert.Equal(t, types.EnrollmentEnrolled, enrollment.Status)

	// The hosting mentor reads the waitlist.
	rec = doJSON(t, router, http.MethodGet, "/classes/1/waitlist", nil, mentorPrincipal(class.MentorID, types.MentorActive))
	require.Equal(t, http.StatusOK, rec.Code)

	var waitlist map[string][]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &waitlist))
	assert.Equal(t, []int{12}, waitlist["user_ids"])
}

func TestClassEnrollClosed(t *testing.T) {
	repo := newClassRepoFake()
	router := newClassRouter(repo)
	seedClass(t, repo, 10, types.ClassCancelled)

	rec := doJSON(t, router, http.MethodPost, "/classes/1/enroll", nil, userPrincipal(10))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClassWaitlistAccess(t *testing.T) {
	repo := newClassRepoFake()
	router := newClassRouter(repo)
	seedClass(t, repo, 10, types.ClassScheduled)

	// A non-hosting mentor is forbidden.
	rec := doJSON(t, router, http.MethodGet, "/classes/1/waitlist", nil, mentorPrincipal(2, types.MentorActive))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An admin may read any waitlist; an empty one marshals as [].
	rec = doJSON(t, router, http.MethodGet, "/classes/1/waitlist", nil, adminPrincipal(50))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_ids":[]}`, rec.Body.String())
}
