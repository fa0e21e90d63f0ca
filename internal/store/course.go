package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// CourseRepository handles persistence for courses and their enrollment
// edges.
type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `
	c.id, c.mentor_id, c.title, c.description, c.category, c.premium, c.price_cents,
	c.created_at, c.updated_at,
	(SELECT COUNT(1) FROM course_enrollments ce WHERE ce.course_id = c.id) AS enrolled_count`

func (r *CourseRepository) List(ctx context.Context, offset, limit int) ([]types.Course, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM courses`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT` + courseColumns + `
		FROM courses c
		ORDER BY c.id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := make([]types.Course, 0, limit)
	for rows.Next() {
		var course types.Course
		if err := rows.Scan(
			&course.ID,
			&course.MentorID,
			&course.Title,
			&course.Description,
			&course.Category,
			&course.Premium,
			&course.PriceCents,
			&course.CreatedAt,
			&course.UpdatedAt,
			&course.EnrolledCount,
		); err != nil {
			return nil, 0, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *CourseRepository) Get(ctx context.Context, id int) (types.Course, error) {
	const query = `SELECT` + courseColumns + ` FROM courses c WHERE c.id = $1`
	var course types.Course
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.MentorID,
		&course.Title,
		&course.Description,
		&course.Category,
		&course.Premium,
		&course.PriceCents,
		&course.CreatedAt,
		&course.UpdatedAt,
		&course.EnrolledCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Course{}, ErrNotFound
		}
		return types.Course{}, err
	}
	return course, nil
}

func (r *CourseRepository) Create(ctx context.Context, course types.Course) (types.Course, error) {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `
		INSERT INTO courses (mentor_id, title, description, category, premium, price_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		course.MentorID,
		course.Title,
		course.Description,
		course.Category,
		course.Premium,
		course.PriceCents,
		course.CreatedAt,
		course.UpdatedAt,
	).Scan(&course.ID); err != nil {
		return types.Course{}, err
	}
	return course, nil
}

// Update writes mutable columns only; mentor_id is fixed at creation.
func (r *CourseRepository) Update(ctx context.Context, course types.Course) (types.Course, error) {
	course.UpdatedAt = time.Now()

	const query = `
		UPDATE courses
		SET title = $1,
			description = $2,
			category = $3,
			premium = $4,
			price_cents = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		course.Title,
		course.Description,
		course.Category,
		course.Premium,
		course.PriceCents,
		course.UpdatedAt,
		course.ID,
	)
	if err != nil {
		return types.Course{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Course{}, err
	}
	if affected == 0 {
		return types.Course{}, ErrNotFound
	}
	return course, nil
}

// Delete removes a course; enrollment edges cascade at the schema level.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM courses WHERE id = $1`
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

// Enroll inserts the (course, user) enrollment edge. A duplicate edge
// maps to ErrDuplicate.
func (r *CourseRepository) Enroll(ctx context.Context, enrollment types.CourseEnrollment) (types.CourseEnrollment, error) {
	enrollment.EnrolledAt = time.Now()

	const query = `
		INSERT INTO course_enrollments (course_id, user_id, payment_id, progress, enrolled_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		enrollment.CourseID,
		enrollment.UserID,
		enrollment.PaymentID,
		enrollment.Progress,
		enrollment.EnrolledAt,
	).Scan(&enrollment.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return types.CourseEnrollment{}, ErrDuplicate
		}
		return types.CourseEnrollment{}, err
	}
	return enrollment, nil
}

// EnrollmentsByUser lists a user's course enrollment edges.
func (r *CourseRepository) EnrollmentsByUser(ctx context.Context, userID int) ([]types.CourseEnrollment, error) {
	const query = `
		SELECT id, course_id, user_id, payment_id, progress, enrolled_at
		FROM course_enrollments
		WHERE user_id = $1
		ORDER BY enrolled_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]types.CourseEnrollment, 0)
	for rows.Next() {
		var enrollment types.CourseEnrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.CourseID,
			&enrollment.UserID,
			&enrollment.PaymentID,
			&enrollment.Progress,
			&enrollment.EnrolledAt,
		); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}
