package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// SchoolRepository handles persistence for schools and their rosters.
type SchoolRepository struct {
	db *sql.DB
}

func NewSchoolRepository(db *sql.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

const schoolColumns = `id, email, name, password_hash, created_at, updated_at`

func scanSchool(row *sql.Row) (types.School, error) {
	var school types.School
	err := row.Scan(
		&school.ID,
		&school.Email,
		&school.Name,
		&school.PasswordHash,
		&school.CreatedAt,
		&school.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.School{}, ErrNotFound
		}
		return types.School{}, err
	}
	return school, nil
}

func (r *SchoolRepository) GetByID(ctx context.Context, id int) (types.School, error) {
	const query = `SELECT ` + schoolColumns + ` FROM schools WHERE id = $1`
	return scanSchool(r.db.QueryRowContext(ctx, query, id))
}

func (r *SchoolRepository) GetByEmail(ctx context.Context, email string) (types.School, error) {
	const query = `SELECT ` + schoolColumns + ` FROM schools WHERE email = $1`
	return scanSchool(r.db.QueryRowContext(ctx, query, email))
}

func (r *SchoolRepository) Create(ctx context.Context, school types.School) (types.School, error) {
	now := time.Now()
	school.CreatedAt = now
	school.UpdatedAt = now

	const query = `
		INSERT INTO schools (email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		school.Email,
		school.Name,
		school.PasswordHash,
		school.CreatedAt,
		school.UpdatedAt,
	).Scan(&school.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return types.School{}, ErrDuplicate
		}
		return types.School{}, err
	}
	return school, nil
}

// Roster returns the users currently on the school's roster.
func (r *SchoolRepository) Roster(ctx context.Context, schoolID int) ([]types.User, error) {
	const query = `
		SELECT u.id, u.email, u.name, u.role, u.premium, u.created_at, u.updated_at
		FROM school_roster sr
		JOIN users u ON u.id = sr.user_id
		WHERE sr.school_id = $1
		ORDER BY sr.added_at`
	rows, err := r.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		var user types.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.Role,
			&user.Premium,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// AddToRoster adds a student to the roster. Re-adding an existing member
// is a no-op.
func (r *SchoolRepository) AddToRoster(ctx context.Context, schoolID, userID int) error {
	const query = `
		INSERT INTO school_roster (school_id, user_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (school_id, user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, schoolID, userID, time.Now())
	return err
}

// RemoveFromRoster removes a student from the roster.
func (r *SchoolRepository) RemoveFromRoster(ctx context.Context, schoolID, userID int) error {
	const query = `DELETE FROM school_roster WHERE school_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, schoolID, userID)
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
