package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mentorhub/apiserver/internal/auth"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

// ClassHandler provides HTTP handlers for live classes and enrollment.
type ClassHandler struct {
	classes *services.ClassService
}

func NewClassHandler(classes *services.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// ClassRouter registers class routes on the given router.
func ClassRouter(r chi.Router, classes *services.ClassService) {
	handler := NewClassHandler(classes)

	r.Get("/", handler.ListClasses)
	r.With(auth.RequireKind(types.KindMentor)).Post("/", handler.CreateClass)
	r.Route("/{classID}", func(r chi.Router) {
		r.Get("/", handler.GetClass)
		r.With(auth.RequireAuthenticated).Put("/", handler.UpdateClass)
		r.With(auth.RequireAuthenticated).Delete("/", handler.DeleteClass)
		r.With(auth.RequireKind(types.KindUser)).Post("/enroll", handler.Enroll)
		r.With(auth.RequireAuthenticated).Get("/waitlist", handler.Waitlist)
	})
}

// ClassListResponse is the paginated list response payload.
type ClassListResponse struct {
	Items []types.Class `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
}

// ClassUpsertRequest is the JSON payload for create and update.
type ClassUpsertRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	MaxStudents int       `json:"max_students"`
	Status      string    `json:"status"`
}

func (h *ClassHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.classes.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list classes")
		return
	}

	writeJSON(w, http.StatusOK, ClassListResponse{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *ClassHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "classID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	class, err := h.classes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "class not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch class")
		return
	}

	writeJSON(w, http.StatusOK, class)
}

func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req ClassUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.classes.Create(r.Context(), *principal.Mentor, types.Class{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		MaxStudents: req.MaxStudents,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMentorNotActive):
			writeError(w, http.StatusForbidden, "mentor is not active")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create class")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ClassHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "classID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	class, err := h.classes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "class not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch class")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.MentorOwner(class.MentorID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req ClassUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.classes.Update(r.Context(), types.Class{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		MaxStudents: req.MaxStudents,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "class not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update class")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ClassHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "classID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	class, err := h.classes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "class not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch class")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.MentorOwner(class.MentorID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.classes.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "class not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete class")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Enroll places the calling user in the class, waitlisting when full.
// Repeat calls return the existing enrollment unchanged.
func (h *ClassHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "classID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := auth.FromContext(r.Context())
	enrollment, err := h.classes.Enroll(r.Context(), principal.ID(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "class not found")
		case errors.Is(err, services.ErrClassClosed):
			writeError(w, http.StatusConflict, "class is closed for enrollment")
		default:
			writeError(w, http.StatusInternalServerError, "failed to enroll")
		}
		return
	}

	writeJSON(w, http.StatusOK, enrollment)
}

// Waitlist lists waitlisted user ids; visible to the owning mentor or
// an admin.
func (h *ClassHandler) Waitlist(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "classID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	class, err := h.classes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "class not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch class")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.MentorOwner(class.MentorID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	userIDs, err := h.classes.Waitlist(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch waitlist")
		return
	}
	if userIDs == nil {
		userIDs = []int{}
	}

	writeJSON(w, http.StatusOK, map[string][]int{"user_ids": userIDs})
}
