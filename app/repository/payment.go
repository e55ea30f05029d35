package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/molle-app/ms-go-reconcile/app/entity"
)

// PaymentRepository never inserts rows: booking payment attempts are
// created pending by the checkout flow, and this service only resolves
// them.
type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Payment, error) {
	query := `
		SELECT id, order_id, payment_id, booking_id, amount_cents, currency,
			status, error_code, error_message, created_at, updated_at
		FROM payments
		WHERE order_id = ?
		LIMIT 1
	`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, orderID), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepository) FindByBookingID(ctx context.Context, bookingID string) (*entity.Payment, error) {
	query := `
		SELECT id, order_id, payment_id, booking_id, amount_cents, currency,
			status, error_code, error_message, created_at, updated_at
		FROM payments
		WHERE booking_id = ?
		ORDER BY id DESC
		LIMIT 1
	`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, bookingID), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

// MarkCompletedIfPending is the idempotency primitive: the status guard in
// the WHERE clause makes concurrent re-deliveries of the same capture event
// collapse to a single applied transition.
func (r *PaymentRepository) MarkCompletedIfPending(ctx context.Context, orderID string, gatewayPaymentID *string, now time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET status = ?, payment_id = ?, updated_at = ?
		WHERE order_id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		entity.StatusCompleted,
		nullableStringValue(gatewayPaymentID),
		now,
		orderID,
		entity.StatusPending,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PaymentRepository) MarkFailedIfPending(ctx context.Context, orderID string, errCode, errMessage *string, now time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET status = ?, error_code = ?, error_message = ?, updated_at = ?
		WHERE order_id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		entity.StatusFailed,
		nullableStringValue(errCode),
		nullableStringValue(errMessage),
		now,
		orderID,
		entity.StatusPending,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PaymentRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT id, order_id, payment_id, booking_id, amount_cents, currency,
			status, error_code, error_message, created_at, updated_at
		FROM payments
		WHERE status = ? AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.StatusPending, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item := &entity.Payment{}
		if err := scanPayment(rows, item); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func scanPayment(scan rowScanner, payment *entity.Payment) error {
	var paymentID sql.NullString
	var errCode sql.NullString
	var errMessage sql.NullString

	err := scan.Scan(
		&payment.ID,
		&payment.OrderID,
		&paymentID,
		&payment.BookingID,
		&payment.AmountCents,
		&payment.Currency,
		&payment.Status,
		&errCode,
		&errMessage,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payment.PaymentID = stringPtrFromNull(paymentID)
	payment.ErrorCode = stringPtrFromNull(errCode)
	payment.ErrorMessage = stringPtrFromNull(errMessage)

	return nil
}
