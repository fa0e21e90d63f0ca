package types

import "time"

// Question is one multiple-choice entry of a mock test. The correct
// answer index is stored but stripped before a test is served to
// students.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// MockTest is a mentor-owned practice test.
type MockTest struct {
	// ID is the unique identifier of the test.
	ID int `json:"id" db:"id"`

	// MentorID references the authoring mentor. Set at creation time,
	// never changed by updates.
	MentorID int `json:"mentor_id" db:"mentor_id"`

	// Title is the test title.
	Title string `json:"title" db:"title"`

	// DurationMinutes bounds an attempt; informational for the client.
	DurationMinutes int `json:"duration_minutes" db:"duration_minutes"`

	// Questions holds the question bank, persisted as JSON.
	Questions []Question `json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Public returns a copy safe to serve to students: answer indexes zeroed.
func (t MockTest) Public() MockTest {
	out := t
	out.Questions = make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		q.Answer = -1
		out.Questions[i] = q
	}
	return out
}

// TestAttempt records one graded submission against a mock test.
type TestAttempt struct {
	ID          int       `json:"id" db:"id"`
	MockTestID  int       `json:"mock_test_id" db:"mock_test_id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Answers     []int     `json:"answers"`
	Score       int       `json:"score" db:"score"`
	Total       int       `json:"total" db:"total"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}
