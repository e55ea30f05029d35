package repository

import (
	"context"

	"github.com/molle-app/ms-go-reconcile/app/entity"
)

type WebhookReceiptRepository struct {
	db DBTX
}

func NewWebhookReceiptRepository(db DBTX) *WebhookReceiptRepository {
	return &WebhookReceiptRepository{db: db}
}

func (r *WebhookReceiptRepository) Create(ctx context.Context, receipt *entity.WebhookReceipt) error {
	query := `
		INSERT INTO webhook_receipts (
			request_id, gateway, event_type, order_id, signature, payload_json, status, error, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		receipt.RequestID,
		receipt.Gateway,
		receipt.EventType,
		nullableStringValue(receipt.OrderID),
		receipt.Signature,
		receipt.PayloadJSON,
		receipt.Status,
		nullableStringValue(receipt.Error),
		receipt.CreatedAt,
		receipt.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	receipt.ID = uint64(id)

	return nil
}
