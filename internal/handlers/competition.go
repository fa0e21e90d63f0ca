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

// CompetitionHandler provides HTTP handlers for competitions.
type CompetitionHandler struct {
	competitions *services.CompetitionService
}

func NewCompetitionHandler(competitions *services.CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{competitions: competitions}
}

// CompetitionRouter registers competition routes on the given router.
func CompetitionRouter(r chi.Router, competitions *services.CompetitionService) {
	handler := NewCompetitionHandler(competitions)

	r.Get("/", handler.ListCompetitions)
	r.With(auth.RequireAuthenticated).Post("/", handler.CreateCompetition)
	r.Route("/{competitionID}", func(r chi.Router) {
		r.Get("/", handler.GetCompetition)
		r.With(auth.RequireAuthenticated).Put("/", handler.UpdateCompetition)
		r.With(auth.RequireAuthenticated).Delete("/", handler.DeleteCompetition)
		r.With(auth.RequireKind(types.KindUser)).Post("/join", handler.Join)
	})
}

// CompetitionListResponse is the paginated list response payload.
type CompetitionListResponse struct {
	Items []types.Competition `json:"items"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
	Total int                 `json:"total"`
}

// CompetitionUpsertRequest is the JSON payload for create and update.
type CompetitionUpsertRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

func (h *CompetitionHandler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.competitions.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list competitions")
		return
	}

	writeJSON(w, http.StatusOK, CompetitionListResponse{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *CompetitionHandler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "competitionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	competition, err := h.competitions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "competition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch competition")
		return
	}

	writeJSON(w, http.StatusOK, competition)
}

// CreateCompetition accepts any authenticated principal as owner.
func (h *CompetitionHandler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req CompetitionUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	owner := types.OwnerRef{Kind: principal.Kind, ID: principal.ID()}
	created, err := h.competitions.Create(r.Context(), owner, types.Competition{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create competition")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *CompetitionHandler) UpdateCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "competitionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	competition, err := h.competitions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "competition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch competition")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(competition.Owner, principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req CompetitionUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.competitions.Update(r.Context(), types.Competition{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "competition not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update competition")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *CompetitionHandler) DeleteCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "competitionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	competition, err := h.competitions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "competition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch competition")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(competition.Owner, principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.competitions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "competition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete competition")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Join registers the calling user as a participant. Joining twice is a
// no-op.
func (h *CompetitionHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "competitionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if err := h.competitions.Join(r.Context(), id, principal.ID()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "competition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to join competition")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
