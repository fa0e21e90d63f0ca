package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mentorhub/apiserver/types"
)

// PaymentRepository handles persistence for recorded gateway payments.
type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, user_id, course_id, reference, amount_cents, status, created_at`

func scanPayment(row *sql.Row) (types.Payment, error) {
	var payment types.Payment
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.CourseID,
		&payment.Reference,
		&payment.AmountCents,
		&payment.Status,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Payment{}, ErrNotFound
		}
		return types.Payment{}, err
	}
	return payment, nil
}

func (r *PaymentRepository) Get(ctx context.Context, id int) (types.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRowContext(ctx, query, id))
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID int) ([]types.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []types.Payment
	for rows.Next() {
		var payment types.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.UserID,
			&payment.CourseID,
			&payment.Reference,
			&payment.AmountCents,
			&payment.Status,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *PaymentRepository) Create(ctx context.Context, payment types.Payment) (types.Payment, error) {
	payment.CreatedAt = time.Now()

	const query = `
		INSERT INTO payments (user_id, course_id, reference, amount_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		payment.UserID,
		payment.CourseID,
		payment.Reference,
		payment.AmountCents,
		payment.Status,
		payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Payment{}, ErrDuplicate
		}
		return types.Payment{}, err
	}
	return payment, nil
}
