package types

import (
	"fmt"
	"time"
)

// PrincipalKind discriminates the three account variants a bearer token
// can resolve to.
type PrincipalKind string

const (
	KindUser   PrincipalKind = "user"
	KindMentor PrincipalKind = "mentor"
	KindSchool PrincipalKind = "school"
)

// ParsePrincipalKind validates a kind string coming from a token payload
// or a URL segment.
func ParsePrincipalKind(raw string) (PrincipalKind, error) {
	switch PrincipalKind(raw) {
	case KindUser, KindMentor, KindSchool:
		return PrincipalKind(raw), nil
	default:
		return "", fmt.Errorf("unknown principal kind %q", raw)
	}
}

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Mentor statuses.
const (
	MentorPending  = "pending"
	MentorActive   = "active"
	MentorInactive = "inactive"
)

// User represents a student (or admin) account.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the unique login address.
	Email string `json:"email" db:"email"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// Role is either "student" or "admin".
	Role string `json:"role" db:"role"`

	// Premium marks a paid account; premium users skip the per-course
	// payment gate.
	Premium bool `json:"premium" db:"premium"`

	// EnrollmentCount is the number of course enrollments the user holds.
	// Loaded alongside the record, never written directly.
	EnrollmentCount int `json:"enrollment_count" db:"enrollment_count"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Mentor represents a course-author account.
type Mentor struct {
	// ID is the unique identifier of the mentor.
	ID int `json:"id" db:"id"`

	// Email is the unique login address.
	Email string `json:"email" db:"email"`

	// Name is the mentor's display name.
	Name string `json:"name" db:"name"`

	// Status is one of "pending", "active", "inactive". New mentors start
	// pending and must be activated by an admin before publishing content.
	Status string `json:"status" db:"status"`

	// Bio is a short public description.
	Bio string `json:"bio" db:"bio"`

	// PasswordHash stores the bcrypt hash of the mentor's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// School represents an organization account managing a student roster.
type School struct {
	// ID is the unique identifier of the school.
	ID int `json:"id" db:"id"`

	// Email is the unique organization login address.
	Email string `json:"email" db:"email"`

	// Name is the school's display name.
	Name string `json:"name" db:"name"`

	// PasswordHash stores the bcrypt hash of the school's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
