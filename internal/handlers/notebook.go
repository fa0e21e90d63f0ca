package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentorhub/apiserver/internal/auth"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

const (
	maxAttachmentBytes     = 8 << 20
	attachmentFormField    = "file"
	attachmentFormMemLimit = 8 << 20
)

// NotebookHandler provides HTTP handlers for notebooks and their
// attachments.
type NotebookHandler struct {
	notebooks *services.NotebookService
}

func NewNotebookHandler(notebooks *services.NotebookService) *NotebookHandler {
	return &NotebookHandler{notebooks: notebooks}
}

// NotebookRouter registers notebook routes on the given router. All
// routes are private to the owner, with the admin override.
func NotebookRouter(r chi.Router, notebooks *services.NotebookService) {
	handler := NewNotebookHandler(notebooks)

	r.With(auth.RequireKind(types.KindUser)).Get("/", handler.ListNotebooks)
	r.With(auth.RequireKind(types.KindUser)).Post("/", handler.CreateNotebook)
	r.Route("/{notebookID}", func(r chi.Router) {
		r.Use(auth.RequireAuthenticated)
		r.Get("/", handler.GetNotebook)
		r.Put("/", handler.UpdateNotebook)
		r.Delete("/", handler.DeleteNotebook)
		r.Put("/attachment", handler.UploadAttachment)
		r.Get("/attachment", handler.DownloadAttachment)
	})
}

// NotebookUpsertRequest is the JSON payload for create and update.
type NotebookUpsertRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *NotebookHandler) ListNotebooks(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	notebooks, err := h.notebooks.ListByUser(r.Context(), principal.ID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notebooks")
		return
	}
	if notebooks == nil {
		notebooks = []types.Notebook{}
	}

	writeJSON(w, http.StatusOK, notebooks)
}

func (h *NotebookHandler) CreateNotebook(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req NotebookUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.notebooks.Create(r.Context(), principal.ID(), types.Notebook{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create notebook")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// loadOwned fetches the notebook and applies the ownership check,
// writing the response on failure.
func (h *NotebookHandler) loadOwned(w http.ResponseWriter, r *http.Request) (types.Notebook, bool) {
	id, err := parseIDParam(r, "notebookID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return types.Notebook{}, false
	}

	notebook, err := h.notebooks.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notebook not found")
			return types.Notebook{}, false
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch notebook")
		return types.Notebook{}, false
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.UserOwner(notebook.UserID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return types.Notebook{}, false
	}
	return notebook, true
}

func (h *NotebookHandler) GetNotebook(w http.ResponseWriter, r *http.Request) {
	notebook, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, notebook)
}

func (h *NotebookHandler) UpdateNotebook(w http.ResponseWriter, r *http.Request) {
	notebook, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req NotebookUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	notebook.Title = req.Title
	notebook.Content = req.Content

	updated, err := h.notebooks.Update(r.Context(), notebook)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update notebook")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *NotebookHandler) DeleteNotebook(w http.ResponseWriter, r *http.Request) {
	notebook, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.notebooks.Delete(r.Context(), notebook.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notebook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete notebook")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadAttachment stores a single multipart file as the notebook's
// attachment, replacing any earlier one. Uploads over 8 MiB are
// rejected.
func (h *NotebookHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	notebook, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(attachmentFormMemLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File[attachmentFormField]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "attachment file is required")
		return
	}
	if len(files) > 1 {
		writeError(w, http.StatusBadRequest, "only one attachment is allowed")
		return
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read attachment")
		return
	}

	data, err := readFileLimited(file, maxAttachmentBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	updated, err := h.notebooks.SaveAttachment(
		r.Context(), notebook, fileHeader.Filename,
		bytes.NewReader(data), int64(len(data)), contentType,
	)
	if err != nil {
		if errors.Is(err, services.ErrAttachmentsDisabled) {
			writeError(w, http.StatusServiceUnavailable, "attachments are not enabled")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store attachment")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DownloadAttachment streams the notebook's attachment back.
func (h *NotebookHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	notebook, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	reader, err := h.notebooks.OpenAttachment(r.Context(), notebook)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoAttachment):
			writeError(w, http.StatusNotFound, "notebook has no attachment")
		case errors.Is(err, services.ErrAttachmentsDisabled):
			writeError(w, http.StatusServiceUnavailable, "attachments are not enabled")
		default:
			writeError(w, http.StatusInternalServerError, "failed to open attachment")
		}
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", notebook.AttachmentName))
	_, _ = io.Copy(w, reader)
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
