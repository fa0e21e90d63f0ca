package storage

import (
	"context"
	"fmt"
	"io"
	"path"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// AttachmentStore keeps notebook attachments in object storage. It is
// the adapter to the external file-storage collaborator: the rest of
// the app deals in notebook ids and filenames, never bucket keys.
type AttachmentStore struct {
	backend ObjectStorage
}

// NewAttachmentStore constructs an AttachmentStore over a backend.
func NewAttachmentStore(backend ObjectStorage) *AttachmentStore {
	return &AttachmentStore{backend: backend}
}

// Enabled reports whether a backend is configured.
func (s *AttachmentStore) Enabled() bool {
	return s != nil && s.backend != nil
}

// EnsureBucket ensures the configured bucket exists.
func (s *AttachmentStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Save uploads a notebook attachment and returns its storage key.
func (s *AttachmentStore) Save(ctx context.Context, notebookID int, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := attachmentKey(notebookID, filename)
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Open streams a stored attachment.
func (s *AttachmentStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Remove deletes a stored attachment.
func (s *AttachmentStore) Remove(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

func attachmentKey(notebookID int, filename string) string {
	return fmt.Sprintf("notebooks/%d/%s", notebookID, path.Base(filename))
}
