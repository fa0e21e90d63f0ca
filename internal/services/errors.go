package services

import "errors"

var (
	// ErrMentorNotActive rejects content creation by pending or inactive
	// mentors.
	ErrMentorNotActive = errors.New("mentor is not active")

	// ErrPaymentRequired rejects premium-course enrollment without a
	// usable payment (missing, not the caller's, wrong course, or not
	// completed).
	ErrPaymentRequired = errors.New("payment required")

	// ErrClassClosed rejects enrollment into a cancelled or ended class.
	ErrClassClosed = errors.New("class is closed for enrollment")

	// ErrValidation covers malformed domain payloads detected by the
	// services (empty titles, inconsistent time ranges, bad enumerations).
	ErrValidation = errors.New("validation failed")
)
