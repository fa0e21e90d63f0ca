package types

import "time"

// Payment statuses as reported by the external gateway.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment is the recorded result of an external gateway transaction for
// a course purchase. The gateway itself lives outside this service; the
// course-enroll premium gate only consults these records.
type Payment struct {
	// ID is the unique identifier of the payment record.
	ID int `json:"id" db:"id"`

	// UserID references the paying user.
	UserID int `json:"user_id" db:"user_id"`

	// CourseID references the purchased course.
	CourseID int `json:"course_id" db:"course_id"`

	// Reference is the gateway transaction reference.
	Reference string `json:"reference" db:"reference"`

	// AmountCents is the charged amount in cents.
	AmountCents int64 `json:"amount_cents" db:"amount_cents"`

	// Status is one of "pending", "completed", "failed".
	Status string `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
