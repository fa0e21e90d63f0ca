package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// NotebookRepository handles persistence for notebooks.
type NotebookRepository struct {
	db *sql.DB
}

func NewNotebookRepository(db *sql.DB) *NotebookRepository {
	return &NotebookRepository{db: db}
}

const notebookColumns = `id, user_id, title, content, attachment_key, attachment_name, created_at, updated_at`

func scanNotebook(row *sql.Row) (types.Notebook, error) {
	var notebook types.Notebook
	err := row.Scan(
		&notebook.ID,
		&notebook.UserID,
		&notebook.Title,
		&notebook.Content,
		&notebook.AttachmentKey,
		&notebook.AttachmentName,
		&notebook.CreatedAt,
		&notebook.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Notebook{}, ErrNotFound
		}
		return types.Notebook{}, err
	}
	return notebook, nil
}

// ListByUser lists a user's notebooks, newest first.
func (r *NotebookRepository) ListByUser(ctx context.Context, userID int) ([]types.Notebook, error) {
	const query = `
		SELECT ` + notebookColumns + `
		FROM notebooks
		WHERE user_id = $1
		ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notebooks := make([]types.Notebook, 0)
	for rows.Next() {
		var notebook types.Notebook
		if err := rows.Scan(
			&notebook.ID,
			&notebook.UserID,
			&notebook.Title,
			&notebook.Content,
			&notebook.AttachmentKey,
			&notebook.AttachmentName,
			&notebook.CreatedAt,
			&notebook.UpdatedAt,
		); err != nil {
			return nil, err
		}
		notebooks = append(notebooks, notebook)
	}
	return notebooks, rows.Err()
}

func (r *NotebookRepository) Get(ctx context.Context, id int) (types.Notebook, error) {
	const query = `SELECT ` + notebookColumns + ` FROM notebooks WHERE id = $1`
	return scanNotebook(r.db.QueryRowContext(ctx, query, id))
}

func (r *NotebookRepository) Create(ctx context.Context, notebook types.Notebook) (types.Notebook, error) {
	now := time.Now()
	notebook.CreatedAt = now
	notebook.UpdatedAt = now

	const query = `
		INSERT INTO notebooks (user_id, title, content, attachment_key, attachment_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		notebook.UserID,
		notebook.Title,
		notebook.Content,
		notebook.AttachmentKey,
		notebook.AttachmentName,
		notebook.CreatedAt,
		notebook.UpdatedAt,
	).Scan(&notebook.ID); err != nil {
		return types.Notebook{}, err
	}
	return notebook, nil
}

// Update writes mutable columns only; user_id is fixed at creation.
func (r *NotebookRepository) Update(ctx context.Context, notebook types.Notebook) (types.Notebook, error) {
	notebook.UpdatedAt = time.Now()

	const query = `
		UPDATE notebooks
		SET title = $1,
			content = $2,
			attachment_key = $3,
			attachment_name = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		notebook.Title,
		notebook.Content,
		notebook.AttachmentKey,
		notebook.AttachmentName,
		notebook.UpdatedAt,
		notebook.ID,
	)
	if err != nil {
		return types.Notebook{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Notebook{}, err
	}
	if affected == 0 {
		return types.Notebook{}, ErrNotFound
	}
	return notebook, nil
}

func (r *NotebookRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM notebooks WHERE id = $1`
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
