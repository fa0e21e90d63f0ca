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

// MentorHandler provides HTTP handlers for mentor profiles.
type MentorHandler struct {
	mentors *services.MentorService
}

func NewMentorHandler(mentors *services.MentorService) *MentorHandler {
	return &MentorHandler{mentors: mentors}
}

// MentorRouter registers mentor routes on the given router.
func MentorRouter(r chi.Router, mentors *services.MentorService) {
	handler := NewMentorHandler(mentors)

	r.Get("/", handler.ListMentors)
	r.Get("/{mentorID}", handler.GetMentor)
	r.With(auth.RequireAdmin).Put("/{mentorID}/status", handler.SetStatus)
}

// MentorListResponse is the paginated list response payload.
type MentorListResponse struct {
	Items []types.Mentor `json:"items"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
}

func (h *MentorHandler) ListMentors(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.mentors.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list mentors")
		return
	}

	writeJSON(w, http.StatusOK, MentorListResponse{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *MentorHandler) GetMentor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "mentorID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mentor, err := h.mentors.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mentor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch mentor")
		return
	}

	writeJSON(w, http.StatusOK, mentor)
}

type MentorStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus activates or deactivates a mentor. Admin only.
func (h *MentorHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "mentorID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req MentorStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.mentors.SetStatus(r.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "mentor not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update mentor status")
		}
		return
	}

	mentor, err := h.mentors.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch mentor")
		return
	}
	writeJSON(w, http.StatusOK, mentor)
}
