package types

import "time"

// Notebook is a user-owned note; at most one attachment, stored in
// object storage under AttachmentKey.
type Notebook struct {
	// ID is the unique identifier of the notebook.
	ID int `json:"id" db:"id"`

	// UserID references the owning user. Set at creation time, never
	// changed by updates.
	UserID int `json:"user_id" db:"user_id"`

	// Title is the notebook title.
	Title string `json:"title" db:"title"`

	// Content is the note body.
	Content string `json:"content" db:"content"`

	// AttachmentKey is the object-storage key of the attachment, empty
	// when none has been uploaded.
	AttachmentKey string `json:"-" db:"attachment_key"`

	// AttachmentName is the original filename of the attachment.
	AttachmentName string `json:"attachment_name,omitempty" db:"attachment_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
