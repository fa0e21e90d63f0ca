package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// CompetitionRepository handles persistence for competitions.
type CompetitionRepository struct {
	db *sql.DB
}

func NewCompetitionRepository(db *sql.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

const competitionColumns = `id, owner_kind, owner_id, title, description, starts_at, ends_at, created_at, updated_at`

func (r *CompetitionRepository) List(ctx context.Context, offset, limit int) ([]types.Competition, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM competitions`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + competitionColumns + `
		FROM competitions
		ORDER BY starts_at
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	competitions := make([]types.Competition, 0, limit)
	for rows.Next() {
		var competition types.Competition
		var ownerKind string
		if err := rows.Scan(
			&competition.ID,
			&ownerKind,
			&competition.Owner.ID,
			&competition.Title,
			&competition.Description,
			&competition.StartsAt,
			&competition.EndsAt,
			&competition.CreatedAt,
			&competition.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		competition.Owner.Kind = types.PrincipalKind(ownerKind)
		competitions = append(competitions, competition)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return competitions, total, nil
}

func (r *CompetitionRepository) Get(ctx context.Context, id int) (types.Competition, error) {
	const query = `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1`
	var competition types.Competition
	var ownerKind string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&competition.ID,
		&ownerKind,
		&competition.Owner.ID,
		&competition.Title,
		&competition.Description,
		&competition.StartsAt,
		&competition.EndsAt,
		&competition.CreatedAt,
		&competition.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Competition{}, ErrNotFound
		}
		return types.Competition{}, err
	}
	competition.Owner.Kind = types.PrincipalKind(ownerKind)

	participants, err := r.participants(ctx, id)
	if err != nil {
		return types.Competition{}, err
	}
	competition.Participants = participants
	return competition, nil
}

func (r *CompetitionRepository) Create(ctx context.Context, competition types.Competition) (types.Competition, error) {
	now := time.Now()
	competition.CreatedAt = now
	competition.UpdatedAt = now

	const query = `
		INSERT INTO competitions (owner_kind, owner_id, title, description, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		string(competition.Owner.Kind),
		competition.Owner.ID,
		competition.Title,
		competition.Description,
		competition.StartsAt,
		competition.EndsAt,
		competition.CreatedAt,
		competition.UpdatedAt,
	).Scan(&competition.ID); err != nil {
		return types.Competition{}, err
	}
	return competition, nil
}

// Update writes mutable columns only; owner columns are fixed at
// creation.
func (r *CompetitionRepository) Update(ctx context.Context, competition types.Competition) (types.Competition, error) {
	competition.UpdatedAt = time.Now()

	const query = `
		UPDATE competitions
		SET title = $1,
			description = $2,
			starts_at = $3,
			ends_at = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		competition.Title,
		competition.Description,
		competition.StartsAt,
		competition.EndsAt,
		competition.UpdatedAt,
		competition.ID,
	)
	if err != nil {
		return types.Competition{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Competition{}, err
	}
	if affected == 0 {
		return types.Competition{}, ErrNotFound
	}
	return competition, nil
}

func (r *CompetitionRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM competitions WHERE id = $1`
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

// Join registers a user as a participant. Idempotent.
func (r *CompetitionRepository) Join(ctx context.Context, competitionID, userID int) error {
	const query = `
		INSERT INTO competition_participants (competition_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (competition_id, user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, competitionID, userID, time.Now())
	return err
}

func (r *CompetitionRepository) participants(ctx context.Context, competitionID int) ([]int, error) {
	const query = `
		SELECT user_id FROM competition_participants
		WHERE competition_id = $1
		ORDER BY joined_at`
	rows, err := r.db.QueryContext(ctx, query, competitionID)
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
