package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mentorhub/apiserver/internal/storage"
	"github.com/mentorhub/apiserver/types"
)

var (
	// ErrAttachmentsDisabled is returned when no object-storage backend
	// is configured.
	ErrAttachmentsDisabled = errors.New("attachments are not enabled")

	// ErrNoAttachment is returned when a notebook has no attachment.
	ErrNoAttachment = errors.New("notebook has no attachment")
)

// NotebookRepository defines persistence operations for notebooks.
type NotebookRepository interface {
	ListByUser(ctx context.Context, userID int) ([]types.Notebook, error)
	Get(ctx context.Context, id int) (types.Notebook, error)
	Create(ctx context.Context, notebook types.Notebook) (types.Notebook, error)
	Update(ctx context.Context, notebook types.Notebook) (types.Notebook, error)
	Delete(ctx context.Context, id int) error
}

// NotebookService encapsulates notebook use-cases; attachments go
// through the object-storage collaborator.
type NotebookService struct {
	repo        NotebookRepository
	attachments *storage.AttachmentStore
	logger      *slog.Logger
}

func NewNotebookService(repo NotebookRepository, attachments *storage.AttachmentStore, logger *slog.Logger) *NotebookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotebookService{repo: repo, attachments: attachments, logger: logger}
}

func (s *NotebookService) ListByUser(ctx context.Context, userID int) ([]types.Notebook, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *NotebookService) Get(ctx context.Context, id int) (types.Notebook, error) {
	return s.repo.Get(ctx, id)
}

func (s *NotebookService) Create(ctx context.Context, userID int, notebook types.Notebook) (types.Notebook, error) {
	if strings.TrimSpace(notebook.Title) == "" {
		return types.Notebook{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	notebook.UserID = userID
	return s.repo.Create(ctx, notebook)
}

func (s *NotebookService) Update(ctx context.Context, notebook types.Notebook) (types.Notebook, error) {
	if strings.TrimSpace(notebook.Title) == "" {
		return types.Notebook{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	return s.repo.Update(ctx, notebook)
}

// Delete removes a notebook and best-effort removes its attachment; a
// storage failure after the row is gone is logged, not surfaced.
func (s *NotebookService) Delete(ctx context.Context, id int) error {
	notebook, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if notebook.AttachmentKey != "" && s.attachments.Enabled() {
		if err := s.attachments.Remove(ctx, notebook.AttachmentKey); err != nil {
			s.logger.Error("attachment cleanup failed", "notebook", id, "key", notebook.AttachmentKey, "error", err)
		}
	}
	return nil
}

// SaveAttachment uploads the attachment and records its key on the
// notebook. An earlier attachment is replaced.
func (s *NotebookService) SaveAttachment(ctx context.Context, notebook types.Notebook, filename string, r io.Reader, size int64, contentType string) (types.Notebook, error) {
	if !s.attachments.Enabled() {
		return types.Notebook{}, ErrAttachmentsDisabled
	}

	key, err := s.attachments.Save(ctx, notebook.ID, filename, r, size, contentType)
	if err != nil {
		return types.Notebook{}, err
	}

	previousKey := notebook.AttachmentKey
	notebook.AttachmentKey = key
	notebook.AttachmentName = filename

	updated, err := s.repo.Update(ctx, notebook)
	if err != nil {
		return types.Notebook{}, err
	}

	if previousKey != "" && previousKey != key {
		if err := s.attachments.Remove(ctx, previousKey); err != nil {
			s.logger.Error("stale attachment cleanup failed", "notebook", notebook.ID, "key", previousKey, "error", err)
		}
	}
	return updated, nil
}

// OpenAttachment streams a notebook's attachment.
func (s *NotebookService) OpenAttachment(ctx context.Context, notebook types.Notebook) (io.ReadCloser, error) {
	if !s.attachments.Enabled() {
		return nil, ErrAttachmentsDisabled
	}
	if notebook.AttachmentKey == "" {
		return nil, ErrNoAttachment
	}
	return s.attachments.Open(ctx, notebook.AttachmentKey)
}
