package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentorhub/apiserver/internal/auth"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

// CourseHandler provides HTTP handlers for courses and enrollment.
type CourseHandler struct {
	courses *services.CourseService
}

func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// CourseRouter registers course routes on the given router.
func CourseRouter(r chi.Router, courses *services.CourseService) {
	handler := NewCourseHandler(courses)

	r.Get("/", handler.ListCourses)
	r.With(auth.RequireKind(types.KindMentor)).Post("/", handler.CreateCourse)
	r.With(auth.RequireKind(types.KindUser)).Get("/enrollments", handler.MyEnrollments)
	r.Route("/{courseID}", func(r chi.Router) {
		r.Get("/", handler.GetCourse)
		r.With(auth.RequireAuthenticated).Put("/", handler.UpdateCourse)
		r.With(auth.RequireAuthenticated).Delete("/", handler.DeleteCourse)
		r.With(auth.RequireKind(types.KindUser)).Post("/enroll", handler.Enroll)
	})
}

// CourseListResponse is the paginated list response payload.
type CourseListResponse struct {
	Items []types.Course `json:"items"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
}

// CourseUpsertRequest is the JSON payload for create and update.
type CourseUpsertRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Premium     bool   `json:"premium"`
	PriceCents  int64  `json:"price_cents"`
}

// EnrollRequest optionally carries the payment backing a premium
// enrollment.
type EnrollRequest struct {
	PaymentID *int `json:"payment_id,omitempty"`
}

func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.courses.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	writeJSON(w, http.StatusOK, CourseListResponse{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "courseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.courses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch course")
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req CourseUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.courses.Create(r.Context(), *principal.Mentor, types.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Premium:     req.Premium,
		PriceCents:  req.PriceCents,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMentorNotActive):
			writeError(w, http.StatusForbidden, "mentor is not active")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create course")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "courseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Existence first: a forbidden caller learns nothing about which
	// ids exist.
	course, err := h.courses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch course")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.MentorOwner(course.MentorID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req CourseUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.courses.Update(r.Context(), types.Course{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Premium:     req.Premium,
		PriceCents:  req.PriceCents,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "course not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update course")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "courseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.courses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch course")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.MentorOwner(course.MentorID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.courses.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete course")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Enroll enrolls the calling user; premium courses require the caller
// to be premium or to reference a completed payment of theirs.
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "courseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req EnrollRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
	}

	principal, _ := auth.FromContext(r.Context())
	enrollment, err := h.courses.Enroll(r.Context(), *principal.User, id, req.PaymentID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "course not found")
		case errors.Is(err, services.ErrPaymentRequired):
			writeError(w, http.StatusPaymentRequired, "payment required")
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusConflict, "already enrolled")
		default:
			writeError(w, http.StatusInternalServerError, "failed to enroll")
		}
		return
	}

	writeJSON(w, http.StatusCreated, enrollment)
}

// MyEnrollments lists the calling user's course enrollments.
func (h *CourseHandler) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	enrollments, err := h.courses.EnrollmentsByUser(r.Context(), principal.ID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list enrollments")
		return
	}

	writeJSON(w, http.StatusOK, enrollments)
}
