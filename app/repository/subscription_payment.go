package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/molle-app/ms-go-reconcile/app/entity"
)

type SubscriptionPaymentRepository struct {
	db DBTX
}

func NewSubscriptionPaymentRepository(db DBTX) *SubscriptionPaymentRepository {
	return &SubscriptionPaymentRepository{db: db}
}

func (r *SubscriptionPaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.SubscriptionPayment, error) {
	query := `
		SELECT id, order_id, payment_id, user_id, package_id, amount_cents, currency,
			status, error_code, error_message, created_at, updated_at
		FROM subscription_payments
		WHERE order_id = ?
		LIMIT 1
	`

	item := &entity.SubscriptionPayment{}
	if err := scanSubscriptionPayment(r.db.QueryRowContext(ctx, query, orderID), item); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *SubscriptionPaymentRepository) MarkCompletedIfPending(ctx context.Context, orderID string, gatewayPaymentID *string, now time.Time) (bool, error) {
	query := `
		UPDATE subscription_payments
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

func (r *SubscriptionPaymentRepository) MarkFailedIfPending(ctx context.Context, orderID string, errCode, errMessage *string, now time.Time) (bool, error) {
	query := `
		UPDATE subscription_payments
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

func (r *SubscriptionPaymentRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.SubscriptionPayment, error) {
	query := `
		SELECT id, order_id, payment_id, user_id, package_id, amount_cents, currency,
			status, error_code, error_message, created_at, updated_at
		FROM subscription_payments
		WHERE status = ? AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.StatusPending, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.SubscriptionPayment, 0)
	for rows.Next() {
		item := &entity.SubscriptionPayment{}
		if err := scanSubscriptionPayment(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanSubscriptionPayment(scan rowScanner, item *entity.SubscriptionPayment) error {
	var paymentID sql.NullString
	var errCode sql.NullString
	var errMessage sql.NullString

	err := scan.Scan(
		&item.ID,
		&item.OrderID,
		&paymentID,
		&item.UserID,
		&item.PackageID,
		&item.AmountCents,
		&item.Currency,
		&item.Status,
		&errCode,
		&errMessage,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return err
	}

	item.PaymentID = stringPtrFromNull(paymentID)
	item.ErrorCode = stringPtrFromNull(errCode)
	item.ErrorMessage = stringPtrFromNull(errMessage)

	return nil
}
