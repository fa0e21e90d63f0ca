package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/apiserver/internal/auth"
	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

type courseRepoFake struct {
	courses     map[int]types.Course
	enrollments []types.CourseEnrollment
	nextID      int
}

func newCourseRepoFake() *courseRepoFake {
	return &courseRepoFake{courses: map[int]types.Course{}, nextID: 1}
}

func (f *courseRepoFake) List(_ context.Context, offset, limit int) ([]types.Course, int, error) {
	var out []types.Course
	for _, c := range f.courses {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *courseRepoFake) Get(_ context.Context, id int) (types.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return types.Course{}, store.ErrNotFound
	}
	return course, nil
}

func (f *courseRepoFake) Create(_ context.Context, course types.Course) (types.Course, error) {
	course.ID = f.nextID
	f.nextID++
	f.courses[course.ID] = course
	return course, nil
}

func (f *courseRepoFake) Update(_ context.Context, course types.Course) (types.Course, error) {
	existing, ok := f.courses[course.ID]
	if !ok {
		return types.Course{}, store.ErrNotFound
	}
	course.MentorID = existing.MentorID
	f.courses[course.ID] = course
	return course, nil
}

func (f *courseRepoFake) Delete(_ context.Context, id int) error {
	if _, ok := f.courses[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *courseRepoFake) Enroll(_ context.Context, enrollment types.CourseEnrollment) (types.CourseEnrollment, error) {
	for _, e := range f.enrollments {
		if e.CourseID == enrollment.CourseID && e.UserID == enrollment.UserID {
			return types.CourseEnrollment{}, store.ErrDuplicate
		}
	}
	enrollment.ID = f.nextID
	f.nextID++
	f.enrollments = append(f.enrollments, enrollment)
	return enrollment, nil
}

func (f *courseRepoFake) EnrollmentsByUser(_ context.Context, userID int) ([]types.CourseEnrollment, error) {
	var out []types.CourseEnrollment
	for _, e := range f.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type paymentRepoFake struct {
	payments map[int]types.Payment
	nextID   int
}

func newPaymentRepoFake() *paymentRepoFake {
	return &paymentRepoFake{payments: map[int]types.Payment{}, nextID: 1}
}

func (f *paymentRepoFake) Get(_ context.Context, id int) (types.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return types.Payment{}, store.ErrNotFound
	}
	return payment, nil
}

func (f *paymentRepoFake) ListByUser(_ context.Context, userID int) ([]types.Payment, error) {
	var out []types.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *paymentRepoFake) Create(_ context.Context, payment types.Payment) (types.Payment, error) {
	payment.ID = f.nextID
	f.nextID++
	f.payments[payment.ID] = payment
	return payment, nil
}

func newCourseRouter(repo *courseRepoFake, payments *paymentRepoFake) http.Handler {
	svc := services.NewCourseService(repo, payments, events.NewBus(nil, nil), nil)
	router := chi.NewRouter()
	router.Route("/courses", func(r chi.Router) {
		CourseRouter(r, svc)
	})
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, principal *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), *principal))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func mentorPrincipal(id int, status string) *auth.Principal {
	return &auth.Principal{Kind: types.KindMentor, Mentor: &types.Mentor{ID: id, Status: status}}
}

func userPrincipal(id int) *auth.Principal {
	return &auth.Principal{Kind: types.KindUser, User: &types.User{ID: id, Role: types.RoleStudent}}
}

func adminPrincipal(id int) *auth.Principal {
	return &auth.Principal{Kind: types.KindUser, User: &types.User{ID: id, Role: types.RoleAdmin}}
}

func TestCreateCourseRequiresMentorKind(t *testing.T) {
	router := newCourseRouter(newCourseRepoFake(), newPaymentRepoFake())
	body := CourseUpsertRequest{Title: "Go Basics"}

	// Anonymous gets 401.
	rec := doJSON(t, router, http.MethodPost, "/courses", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A user gets 403.
	rec = doJSON(t, router, http.MethodPost, "/courses", body, userPrincipal(1))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A pending mentor gets 403.
	rec = doJSON(t, router, http.MethodPost, "/courses", body, mentorPrincipal(1, types.MentorPending))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An active mentor creates.
	rec = doJSON(t, router, http.MethodPost, "/courses", body, mentorPrincipal(1, types.MentorActive))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created types.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 1, created.MentorID)
}

func TestUpdateCourseOwnership(t *testing.T) {
	repo := newCourseRepoFake()
	router := newCourseRouter(repo, newPaymentRepoFake())

	course, err := repo.Create(context.Background(), types.Course{MentorID: 1, Title: "Go Basics"})
	require.NoError(t, err)

	body := CourseUpsertRequest{Title: "Go Basics v2"}

	// Unknown id yields 404 before any ownership verdict.
	rec := doJSON(t, router, http.MethodPut, "/courses/999", body, mentorPrincipal(2, types.MentorActive))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Another mentor is forbidden.
	rec = doJSON(t, router, http.MethodPut, "/courses/1", body, mentorPrincipal(2, types.MentorActive))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner updates.
	rec = doJSON(t, router, http.MethodPut, "/courses/1", body, mentorPrincipal(1, types.MentorActive))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated types.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Go Basics v2", updated.Title)
	assert.Equal(t, course.MentorID, updated.MentorID, "owner never changes on update")

	// An admin may update any course.
	rec = doJSON(t, router, http.MethodPut, "/courses/1", CourseUpsertRequest{Title: "Moderated"}, adminPrincipal(50))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteCourseAdminOverride(t *testing.T) {
	repo := newCourseRepoFake()
	router := newCourseRouter(repo, newPaymentRepoFake())

	_, err := repo.Create(context.Background(), types.Course{MentorID: 1, Title: "Go Basics"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodDelete, "/courses/1", nil, userPrincipal(9))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/courses/1", nil, adminPrincipal(50))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/courses/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrollPremiumGateOverHTTP(t *testing.T) {
	repo := newCourseRepoFake()
	payments := newPaymentRepoFake()
	router := newCourseRouter(repo, payments)

	_, err := repo.Create(context.Background(), types.Course{MentorID: 1, Title: "Pro Go", Premium: true})
	require.NoError(t, err)

	// Free user with no payment: 402.
	rec := doJSON(t, router, http.MethodPost, "/courses/1/enroll", nil, userPrincipal(7))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	// With a completed payment: 201.
	payment, err := payments.Create(context.Background(), types.Payment{
		UserID: 7, CourseID: 1, Status: types.PaymentCompleted,
	})
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodPost, "/courses/1/enroll", EnrollRequest{PaymentID: &payment.ID}, userPrincipal(7))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Enrolling twice: 409.
	rec = doJSON(t, router, http.MethodPost, "/courses/1/enroll", EnrollRequest{PaymentID: &payment.ID}, userPrincipal(7))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The enrollment list contains the course exactly once.
	rec = doJSON(t, router, http.MethodGet, "/courses/enrollments", nil, userPrincipal(7))
	require.Equal(t, http.StatusOK, rec.Code)

	var enrollments []types.CourseEnrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrollments))
	require.Len(t, enrollments, 1)
	assert.Equal(t, 1, enrollments[0].CourseID)
}

func TestEnrollUnknownCourse(t *testing.T) {
	router := newCourseRouter(newCourseRepoFake(), newPaymentRepoFake())

	rec := doJSON(t, router, http.MethodPost, "/courses/999/enroll", nil, userPrincipal(7))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
