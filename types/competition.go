package types

import "time"

// Competition is a timed contest. Any principal kind may host one, so the
// owner is a tagged reference rather than a fixed column.
type Competition struct {
	// ID is the unique identifier of the competition.
	ID int `json:"id" db:"id"`

	// Owner references the hosting principal. Set at creation time,
	// never changed by updates.
	Owner OwnerRef `json:"owner"`

	// Title is the contest title.
	Title string `json:"title" db:"title"`

	// Description is the long-form contest description.
	Description string `json:"description" db:"description"`

	// StartsAt and EndsAt bound the contest window.
	StartsAt time.Time `json:"starts_at" db:"starts_at"`
	EndsAt   time.Time `json:"ends_at" db:"ends_at"`

	// Participants lists the ids of registered users.
	Participants []int `json:"participants"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
