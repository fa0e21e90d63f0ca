package types

import "time"

// Class statuses.
const (
	ClassScheduled = "scheduled"
	ClassLive      = "live"
	ClassEnded     = "ended"
	ClassCancelled = "cancelled"
)

// Enrollment states for a (user, class) pair.
const (
	EnrollmentEnrolled   = "enrolled"
	EnrollmentWaitlisted = "waitlisted"
)

// Class is a capacity-bounded live session hosted by a mentor.
type Class struct {
	// ID is the unique identifier of the class.
	ID int `json:"id" db:"id"`

	// MentorID references the hosting mentor. Set at creation time,
	// never changed by updates.
	MentorID int `json:"mentor_id" db:"mentor_id"`

	// Title is the session title.
	Title string `json:"title" db:"title"`

	// Description is the long-form session description.
	Description string `json:"description" db:"description"`

	// StartsAt and EndsAt bound the session window.
	StartsAt time.Time `json:"starts_at" db:"starts_at"`
	EndsAt   time.Time `json:"ends_at" db:"ends_at"`

	// MaxStudents caps enrollment; once reached, further enrollments
	// land on the waitlist. The cap is best effort, not a hard bound.
	MaxStudents int `json:"max_students" db:"max_students"`

	// Status is one of "scheduled", "live", "ended", "cancelled".
	Status string `json:"status" db:"status"`

	// EnrolledCount is the number of enrolled (not waitlisted) students.
	// Loaded alongside the record, never written directly.
	EnrolledCount int `json:"enrolled_count" db:"enrolled_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ClassEnrollment is the User-Class edge; Status distinguishes an
// enrolled seat from a waitlist slot.
type ClassEnrollment struct {
	ID         int       `json:"id" db:"id"`
	ClassID    int       `json:"class_id" db:"class_id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Status     string    `json:"status" db:"status"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"`
}
