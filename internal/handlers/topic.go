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

// TopicHandler provides HTTP handlers for discussion topics.
type TopicHandler struct {
	topics *services.TopicService
}

func NewTopicHandler(topics *services.TopicService) *TopicHandler {
	return &TopicHandler{topics: topics}
}

// TopicRouter registers topic routes on the given router.
func TopicRouter(r chi.Router, topics *services.TopicService) {
	handler := NewTopicHandler(topics)

	r.Get("/", handler.ListTopics)
	r.With(auth.RequireAuthenticated).Post("/", handler.CreateTopic)
	r.Route("/{topicID}", func(r chi.Router) {
		r.Get("/", handler.GetTopic)
		r.With(auth.RequireAuthenticated).Put("/", handler.UpdateTopic)
		r.With(auth.RequireAuthenticated).Delete("/", handler.DeleteTopic)
	})
}

// TopicListResponse is the paginated list response payload.
type TopicListResponse struct {
	Items []types.Topic `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
}

// TopicUpsertRequest is the JSON payload for create and update.
type TopicUpsertRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.topics.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list topics")
		return
	}

	writeJSON(w, http.StatusOK, TopicListResponse{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "topicID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topic, err := h.topics.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch topic")
		return
	}

	writeJSON(w, http.StatusOK, topic)
}

func (h *TopicHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req TopicUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	owner := types.OwnerRef{Kind: principal.Kind, ID: principal.ID()}
	created, err := h.topics.Create(r.Context(), owner, types.Topic{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create topic")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *TopicHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "topicID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topic, err := h.topics.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch topic")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(topic.Owner, principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req TopicUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.topics.Update(r.Context(), types.Topic{
		ID:    id,
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "topic not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update topic")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *TopicHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "topicID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topic, err := h.topics.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch topic")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(topic.Owner, principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.topics.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete topic")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
