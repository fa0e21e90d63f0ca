package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// ClassRepository handles persistence for classes and their enrollment
// edges.
type ClassRepository struct {
	db *sql.DB
}

func NewClassRepository(db *sql.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `
	c.id, c.mentor_id, c.title, c.description, c.starts_at, c.ends_at, c.max_students,
	c.status, c.created_at, c.updated_at,
	(SELECT COUNT(1) FROM class_enrollments ce
	 WHERE ce.class_id = c.id AND ce.status = 'enrolled') AS enrolled_count`

func scanClass(row *sql.Row) (types.Class, error) {
	var class types.Class
	err := row.Scan(
		&class.ID,
		&class.MentorID,
		&class.Title,
		&class.Description,
		&class.StartsAt,
		&class.EndsAt,
		&class.MaxStudents,
		&class.Status,
		&class.CreatedAt,
		&class.UpdatedAt,
		&class.EnrolledCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Class{}, ErrNotFound
		}
		return types.Class{}, err
	}
	return class, nil
}

func (r *ClassRepository) List(ctx context.Context, offset, limit int) ([]types.Class, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM classes`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT` + classColumns + `
		FROM classes c
		ORDER BY c.starts_at
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	classes := make([]types.Class, 0, limit)
	for rows.Next() {
		var class types.Class
		if err := rows.Scan(
			&class.ID,
			&class.MentorID,
			&class.Title,
			&class.Description,
			&class.StartsAt,
			&class.EndsAt,
			&class.MaxStudents,
			&class.Status,
			&class.CreatedAt,
			&class.UpdatedAt,
			&class.EnrolledCount,
		); err != nil {
			return nil, 0, err
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return classes, total, nil
}

func (r *ClassRepository) Get(ctx context.Context, id int) (types.Class, error) {
	const query = `SELECT` + classColumns + ` FROM classes c WHERE c.id = $1`
	return scanClass(r.db.QueryRowContext(ctx, query, id))
}

func (r *ClassRepository) Create(ctx context.Context, class types.Class) (types.Class, error) {
	now := time.Now()
	class.CreatedAt = now
	class.UpdatedAt = now

	const query = `
		INSERT INTO classes (mentor_id, title, description, starts_at, ends_at, max_students, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		class.MentorID,
		class.Title,
		class.Description,
		class.StartsAt,
		class.EndsAt,
		class.MaxStudents,
		class.Status,
		class.CreatedAt,
		class.UpdatedAt,
	).Scan(&class.ID); err != nil {
		return types.Class{}, err
	}
	return class, nil
}

// Update writes mutable columns only; mentor_id is fixed at creation.
func (r *ClassRepository) Update(ctx context.Context, class types.Class) (types.Class, error) {
	class.UpdatedAt = time.Now()

	const query = `
		UPDATE classes
		SET title = $1,
			description = $2,
			starts_at = $3,
			ends_at = $4,
			max_students = $5,
			status = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		class.Title,
		class.Description,
		class.StartsAt,
		class.EndsAt,
		class.MaxStudents,
		class.Status,
		class.UpdatedAt,
		class.ID,
	)
	if err != nil {
		return types.Class{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Class{}, err
	}
	if affected == 0 {
		return types.Class{}, ErrNotFound
	}
	return class, nil
}

// Delete removes a class; enrollment edges cascade at the schema level.
func (r *ClassRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM classes WHERE id = $1`
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

// GetEnrollment fetches the (class, user) edge if one exists.
func (r *ClassRepository) GetEnrollment(ctx context.Context, classID, userID int) (types.ClassEnrollment, error) {
	const query = `
		SELECT id, class_id, user_id, status, enrolled_at
		FROM class_enrollments
		WHERE class_id = $1 AND user_id = $2`
	var enrollment types.ClassEnrollment
	err := r.db.QueryRowContext(ctx, query, classID, userID).Scan(
		&enrollment.ID,
		&enrollment.ClassID,
		&enrollment.UserID,
		&enrollment.Status,
		&enrollment.EnrolledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ClassEnrollment{}, ErrNotFound
		}
		return types.ClassEnrollment{}, err
	}
	return enrollment, nil
}

// Enroll inserts the (class, user) edge with the given status. The
// insert is idempotent: a pre-existing edge is left untouched and
// returned as-is, which is what makes repeat waitlist attempts no-ops.
func (r *ClassRepository) Enroll(ctx context.Context, enrollment types.ClassEnrollment) (types.ClassEnrollment, error) {
	enrollment.EnrolledAt = time.Now()

	const query = `
		INSERT INTO class_enrollments (class_id, user_id, status, enrolled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (class_id, user_id) DO NOTHING
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		enrollment.ClassID,
		enrollment.UserID,
		enrollment.Status,
		enrollment.EnrolledAt,
	).Scan(&enrollment.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict: the edge already existed. Return the stored one.
			return r.GetEnrollment(ctx, enrollment.ClassID, enrollment.UserID)
		}
		return types.ClassEnrollment{}, err
	}
	return enrollment, nil
}

// EnrolledCount counts enrolled (not waitlisted) students for a class.
func (r *ClassRepository) EnrolledCount(ctx context.Context, classID int) (int, error) {
	const query = `
		SELECT COUNT(1) FROM class_enrollments
		WHERE class_id = $1 AND status = 'enrolled'`
	var count int
	err := r.db.QueryRowContext(ctx, query, classID).Scan(&count)
	return count, err
}

// Waitlist lists waitlisted user ids for a class, oldest first.
func (r *ClassRepository) Waitlist(ctx context.Context, classID int) ([]int, error) {
	const query = `
		SELECT user_id FROM class_enrollments
		WHERE class_id = $1 AND status = 'waitlisted'
		ORDER BY enrolled_at`
	rows, err := r.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
