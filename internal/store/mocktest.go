package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// MockTestRepository handles persistence for mock tests and attempts.
// Question banks are stored as JSONB, matching how the source kept them
// as embedded documents.
type MockTestRepository struct {
	db *sql.DB
}

func NewMockTestRepository(db *sql.DB) *MockTestRepository {
	return &MockTestRepository{db: db}
}

const mockTestColumns = `id, mentor_id, title, duration_minutes, questions, created_at, updated_at`

func (r *MockTestRepository) List(ctx context.Context, offset, limit int) ([]types.MockTest, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM mock_tests`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + mockTestColumns + `
		FROM mock_tests
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tests := make([]types.MockTest, 0, limit)
	for rows.Next() {
		var test types.MockTest
		var questionsJSON []byte
		if err := rows.Scan(
			&test.ID,
			&test.MentorID,
			&test.Title,
			&test.DurationMinutes,
			&questionsJSON,
			&test.CreatedAt,
			&test.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal(questionsJSON, &test.Questions)
		tests = append(tests, test)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (r *MockTestRepository) Get(ctx context.Context, id int) (types.MockTest, error) {
	const query = `SELECT ` + mockTestColumns + ` FROM mock_tests WHERE id = $1`
	var test types.MockTest
	var questionsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&test.ID,
		&test.MentorID,
		&test.Title,
		&test.DurationMinutes,
		&questionsJSON,
		&test.CreatedAt,
		&test.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MockTest{}, ErrNotFound
		}
		return types.MockTest{}, err
	}
	_ = json.Unmarshal(questionsJSON, &test.Questions)
	return test, nil
}

func (r *MockTestRepository) Create(ctx context.Context, test types.MockTest) (types.MockTest, error) {
	now := time.Now()
	test.CreatedAt = now
	test.UpdatedAt = now

	questionsJSON, err := json.Marshal(test.Questions)
	if err != nil {
		return types.MockTest{}, err
	}

	const query = `
		INSERT INTO mock_tests (mentor_id, title, duration_minutes, questions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		test.MentorID,
		test.Title,
		test.DurationMinutes,
		questionsJSON,
		test.CreatedAt,
		test.UpdatedAt,
	).Scan(&test.ID); err != nil {
		return types.MockTest{}, err
	}
	return test, nil
}

// Update writes mutable columns only; mentor_id is fixed at creation.
func (r *MockTestRepository) Update(ctx context.Context, test types.MockTest) (types.MockTest, error) {
	test.UpdatedAt = time.Now()

	questionsJSON, err := json.Marshal(test.Questions)
	if err != nil {
		return types.MockTest{}, err
	}

	const query = `
		UPDATE mock_tests
		SET title = $1,
			duration_minutes = $2,
			questions = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		test.Title,
		test.DurationMinutes,
		questionsJSON,
		test.UpdatedAt,
		test.ID,
	)
	if err != nil {
		return types.MockTest{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.MockTest{}, err
	}
	if affected == 0 {
		return types.MockTest{}, ErrNotFound
	}
	return test, nil
}

func (r *MockTestRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM mock_tests WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddAttempt stores a graded attempt.
func (r *MockTestRepository) AddAttempt(ctx context.Context, attempt types.TestAttempt) (types.TestAttempt, error) {
	attempt.SubmittedAt = time.Now()

	answersJSON, err := json.Marshal(attempt.Answers)
	if err != nil {
		return types.TestAttempt{}, err
	}

	const query = `
		INSERT INTO test_attempts (mock_test_id, user_id, answers, score, total, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		attempt.MockTestID,
		attempt.UserID,
		answersJSON,
		attempt.Score,
		attempt.Total,
		attempt.SubmittedAt,
	).Scan(&attempt.ID); err != nil {
		return types.TestAttempt{}, err
	}
	return attempt, nil
}

// AttemptsByUser lists a user's attempts against a test, newest first.
func (r *MockTestRepository) AttemptsByUser(ctx context.Context, mockTestID, userID int) ([]types.TestAttempt, error) {
	const query = `
		SELECT id, mock_test_id, user_id, answers, score, total, submitted_at
		FROM test_attempts
		WHERE mock_test_id = $1 AND user_id = $2
		ORDER BY submitted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, mockTestID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]types.TestAttempt, 0)
	for rows.Next() {
		var attempt types.TestAttempt
		var answersJSON []byte
		if err := rows.Scan(
			&attempt.ID,
			&attempt.MockTestID,
			&attempt.UserID,
			&answersJSON,
			&attempt.Score,
			&attempt.Total,
			&attempt.SubmittedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(answersJSON, &attempt.Answers)
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
