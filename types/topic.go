package types

import "time"

// Topic is a discussion thread. Any principal kind may author one.
type Topic struct {
	// ID is the unique identifier of the topic.
	ID int `json:"id" db:"id"`

	// Owner references the authoring principal. Set at creation time,
	// never changed by updates.
	Owner OwnerRef `json:"owner"`

	// Title is the thread title.
	Title string `json:"title" db:"title"`

	// Body is the thread body.
	Body string `json:"body" db:"body"`

	// Tags are free-form labels.
	Tags []string `json:"tags"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
