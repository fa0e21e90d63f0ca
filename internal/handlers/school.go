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

// SchoolHandler provides HTTP handlers for school roster management.
type SchoolHandler struct {
	schools *services.SchoolService
}

func NewSchoolHandler(schools *services.SchoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// SchoolRouter registers school routes on the given router. Every route
// is restricted to school principals.
func SchoolRouter(r chi.Router, schools *services.SchoolService) {
	handler := NewSchoolHandler(schools)

	r.Use(auth.RequireKind(types.KindSchool))
	r.Get("/roster", handler.Roster)
	r.Post("/roster", handler.AddToRoster)
	r.Delete("/roster/{userID}", handler.RemoveFromRoster)
}

// RosterAddRequest names the student to add to the roster.
type RosterAddRequest struct {
	UserID int `json:"user_id"`
}

func (h *SchoolHandler) Roster(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	students, err := h.schools.Roster(r.Context(), principal.ID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch roster")
		return
	}
	if students == nil {
		students = []types.User{}
	}

	writeJSON(w, http.StatusOK, students)
}

// AddToRoster adds a student by id. Adding a student twice is a no-op.
func (h *SchoolHandler) AddToRoster(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req RosterAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.UserID < 1 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.schools.AddToRoster(r.Context(), principal.ID(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to add to roster")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SchoolHandler) RemoveFromRoster(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	userID, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.schools.RemoveFromRoster(r.Context(), principal.ID(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove from roster")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
