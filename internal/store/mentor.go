package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// MentorRepository handles persistence for mentors.
type MentorRepository struct {
	db *sql.DB
}

func NewMentorRepository(db *sql.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

const mentorColumns = `id, email, name, status, bio, password_hash, created_at, updated_at`

func scanMentor(row *sql.Row) (types.Mentor, error) {
	var mentor types.Mentor
	err := row.Scan(
		&mentor.ID,
		&mentor.Email,
		&mentor.Name,
		&mentor.Status,
		&mentor.Bio,
		&mentor.PasswordHash,
		&mentor.CreatedAt,
		&mentor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Mentor{}, ErrNotFound
		}
		return types.Mentor{}, err
	}
	return mentor, nil
}

func (r *MentorRepository) GetByID(ctx context.Context, id int) (types.Mentor, error) {
	const query = `SELECT ` + mentorColumns + ` FROM mentors WHERE id = $1`
	return scanMentor(r.db.QueryRowContext(ctx, query, id))
}

func (r *MentorRepository) GetByEmail(ctx context.Context, email string) (types.Mentor, error) {
	const query = `SELECT ` + mentorColumns + ` FROM mentors WHERE email = $1`
	return scanMentor(r.db.QueryRowContext(ctx, query, email))
}

func (r *MentorRepository) List(ctx context.Context, offset, limit int) ([]types.Mentor, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM mentors`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + mentorColumns + `
		FROM mentors
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	mentors := make([]types.Mentor, 0, limit)
	for rows.Next() {
		var mentor types.Mentor
		if err := rows.Scan(
			&mentor.ID,
			&mentor.Email,
			&mentor.Name,
			&mentor.Status,
			&mentor.Bio,
			&mentor.PasswordHash,
			&mentor.CreatedAt,
			&mentor.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		mentors = append(mentors, mentor)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return mentors, total, nil
}

func (r *MentorRepository) Create(ctx context.Context, mentor types.Mentor) (types.Mentor, error) {
	now := time.Now()
	mentor.CreatedAt = now
	mentor.UpdatedAt = now

	const query = `
		INSERT INTO mentors (email, name, status, bio, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		mentor.Email,
		mentor.Name,
		mentor.Status,
		mentor.Bio,
		mentor.PasswordHash,
		mentor.CreatedAt,
		mentor.UpdatedAt,
	).Scan(&mentor.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Mentor{}, ErrDuplicate
		}
		return types.Mentor{}, err
	}
	return mentor, nil
}

func (r *MentorRepository) Update(ctx context.Context, mentor types.Mentor) (types.Mentor, error) {
	mentor.UpdatedAt = time.Now()

	const query = `
		UPDATE mentors
		SET name = $1,
			bio = $2,
			password_hash = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		mentor.Name,
		mentor.Bio,
		mentor.PasswordHash,
		mentor.UpdatedAt,
		mentor.ID,
	)
	if err != nil {
		return types.Mentor{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Mentor{}, err
	}
	if affected == 0 {
		return types.Mentor{}, ErrNotFound
	}
	return mentor, nil
}

func (r *MentorRepository) SetStatus(ctx context.Context, id int, status string) error {
	const query = `UPDATE mentors SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
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
