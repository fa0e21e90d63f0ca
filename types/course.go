package types

import "time"

// Course is a mentor-owned catalog entry students enroll into.
type Course struct {
	// ID is the unique identifier of the course.
	ID int `json:"id" db:"id"`

	// MentorID references the mentor who created the course. Set at
	// creation time, never changed by updates.
	MentorID int `json:"mentor_id" db:"mentor_id"`

	// Title is the course title shown in the catalog.
	Title string `json:"title" db:"title"`

	// Description is the long-form course description.
	Description string `json:"description" db:"description"`

	// Category is a free-form catalog grouping ("math", "go", ...).
	Category string `json:"category" db:"category"`

	// Premium gates enrollment behind a premium account or a completed
	// payment for this course.
	Premium bool `json:"premium" db:"premium"`

	// PriceCents is the course price in cents; zero for free courses.
	PriceCents int64 `json:"price_cents" db:"price_cents"`

	// EnrolledCount is the number of enrollment edges for the course.
	// Loaded alongside the record, never written directly.
	EnrolledCount int `json:"enrolled_count" db:"enrolled_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CourseEnrollment is the User-Course edge created by an enroll action.
type CourseEnrollment struct {
	ID         int       `json:"id" db:"id"`
	CourseID   int       `json:"course_id" db:"course_id"`
	UserID     int       `json:"user_id" db:"user_id"`
	PaymentID  *int      `json:"payment_id,omitempty" db:"payment_id"`
	Progress   int       `json:"progress" db:"progress"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"`
}
