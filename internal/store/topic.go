package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// TopicRepository handles persistence for discussion topics.
type TopicRepository struct {
	db *sql.DB
}

func NewTopicRepository(db *sql.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

const topicColumns = `id, owner_kind, owner_id, title, body, tags, created_at, updated_at`

func (r *TopicRepository) List(ctx context.Context, offset, limit int) ([]types.Topic, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM topics`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + topicColumns + `
		FROM topics
		ORDER BY id DESC
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	topics := make([]types.Topic, 0, limit)
	for rows.Next() {
		var topic types.Topic
		var ownerKind string
		var tagsJSON []byte
		if err := rows.Scan(
			&topic.ID,
			&ownerKind,
			&topic.Owner.ID,
			&topic.Title,
			&topic.Body,
			&tagsJSON,
			&topic.CreatedAt,
			&topic.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		topic.Owner.Kind = types.PrincipalKind(ownerKind)
		_ = json.Unmarshal(tagsJSON, &topic.Tags)
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return topics, total, nil
}

func (r *TopicRepository) Get(ctx context.Context, id int) (types.Topic, error) {
	const query = `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`
	var topic types.Topic
	var ownerKind string
	var tagsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&topic.ID,
		&ownerKind,
		&topic.Owner.ID,
		&topic.Title,
		&topic.Body,
		&tagsJSON,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Topic{}, ErrNotFound
		}
		return types.Topic{}, err
	}
	topic.Owner.Kind = types.PrincipalKind(ownerKind)
	_ = json.Unmarshal(tagsJSON, &topic.Tags)
	return topic, nil
}

func (r *TopicRepository) Create(ctx context.Context, topic types.Topic) (types.Topic, error) {
	now := time.Now()
	topic.CreatedAt = now
	topic.UpdatedAt = now

	tagsJSON, err := json.Marshal(topic.Tags)
	if err != nil {
		return types.Topic{}, err
	}

	const query = `
		INSERT INTO topics (owner_kind, owner_id, title, body, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		string(topic.Owner.Kind),
		topic.Owner.ID,
		topic.Title,
		topic.Body,
		tagsJSON,
		topic.CreatedAt,
		topic.UpdatedAt,
	).Scan(&topic.ID); err != nil {
		return types.Topic{}, err
	}
	return topic, nil
}

// Update writes mutable columns only; owner columns are fixed at
// creation.
func (r *TopicRepository) Update(ctx context.Context, topic types.Topic) (types.Topic, error) {
	topic.UpdatedAt = time.Now()

	tagsJSON, err := json.Marshal(topic.Tags)
	if err != nil {
		return types.Topic{}, err
	}

	const query = `
		UPDATE topics
		SET title = $1,
			body = $2,
			tags = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		topic.Title,
		topic.Body,
		tagsJSON,
		topic.UpdatedAt,
		topic.ID,
	)
	if err != nil {
		return types.Topic{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Topic{}, err
	}
	if affected == 0 {
		return types.Topic{}, ErrNotFound
	}
	return topic, nil
}

func (r *TopicRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM topics WHERE id = $1`
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
