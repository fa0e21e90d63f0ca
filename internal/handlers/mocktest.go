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

// MockTestHandler provides HTTP handlers for mock tests and attempts.
// Reads go through MockTest.Public so answer keys never leave the
// service.
type MockTestHandler struct {
	mockTests *services.MockTestService
}

func NewMockTestHandler(mockTests *services.MockTestService) *MockTestHandler {
	return &MockTestHandler{mockTests: mockTests}
}

// MockTestRouter registers mock-test routes on the given router.
func MockTestRouter(r chi.Router, mockTests *services.MockTestService) {
	handler := NewMockTestHandler(mockTests)

	r.Get("/", handler.ListMockTests)
	r.With(auth.RequireKind(types.KindMentor)).Post("/", handler.CreateMockTest)
	r.Route("/{mockTestID}", func(r chi.Router) {
		r.Get("/", handler.GetMockTest)
		r.With(auth.RequireAuthenticated).Put("/", handler.UpdateMockTest)
		r.With(auth.RequireAuthenticated).Delete("/", handler.DeleteMockTest)
		r.With(auth.RequirePremiumOrEnrolled).Post("/attempts", handler.SubmitAttempt)
		r.With(auth.RequireKind(types.KindUser)).Get("/attempts", handler.ListAttempts)
	})
}

// MockTestListResponse is the paginated list response payload.
type MockTestListResponse struct {
	Items []types.MockTest `json:"items"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
}

// MockTestUpsertRequest is the JSON payload for create and update.
type MockTestUpsertRequest struct {
	Title           string           `json:"title"`
	DurationMinutes int              `json:"duration_minutes"`
	Questions       []types.Question `json:"questions"`
}

// AttemptRequest carries the answer index per question, in question
// order.
type AttemptRequest struct {
	Answers []int `json:"answers"`
}

func (h *MockTestHandler) ListMockTests(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.mockTests.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list mock tests")
		return
	}

	public := make([]types.MockTest, len(items))
	for i, test := range items {
		public[i] = test.Public()
	}

	writeJSON(w, http.StatusOK, MockTestListResponse{Items: public, Page: page, Limit: limit, Total: total})
}

func (h *MockTestHandler) GetMockTest(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "mockTestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	test, err := h.mockTests.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mock test not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch mock test")
		return
	}

	writeJSON(w, http.StatusOK, test.Public())
}

func (h *MockTestHandler) CreateMockTest(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req MockTestUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.mockTests.Create(r.Context(), *principal.Mentor, types.MockTest{
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Questions:       req.Questions,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMentorNotActive):
			writeError(w, http.StatusForbidden, "mentor is not active")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create mock test")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created.Public())
}

func (h *MockTestHandler) UpdateMockTest(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "mockTestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	test, err := h.mockTests.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mock test not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch mock test")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.MentorOwner(test.MentorID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req MockTestUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.mockTests.Update(r.Context(), types.MockTest{
		ID:              id,
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Questions:       req.Questions,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "mock test not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update mock test")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated.Public())
}

func (h *MockTestHandler) DeleteMockTest(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "mockTestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	test, err := h.mockTests.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mock test not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch mock test")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.MentorOwner(test.MentorID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.mockTests.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mock test not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete mock test")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitAttempt grades the submitted answers server-side and stores the
// result.
func (h *MockTestHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "mockTestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	attempt, err := h.mockTests.SubmitAttempt(r.Context(), principal.ID(), id, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "mock test not found")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to submit attempt")
		}
		return
	}

	writeJSON(w, http.StatusCreated, attempt)
}

// ListAttempts returns the calling user's attempts for the mock test.
func (h *MockTestHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "mockTestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := auth.FromContext(r.Context())
	attempts, err := h.mockTests.AttemptsByUser(r.Context(), id, principal.ID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mock test not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}

	writeJSON(w, http.StatusOK, attempts)
}
