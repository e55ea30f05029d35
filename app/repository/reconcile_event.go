package repository

import (
	"context"

	"github.com/molle-app/ms-go-reconcile/app/entity"
)

type ReconcileEventRepository struct {
	db DBTX
}

func NewReconcileEventRepository(db DBTX) *ReconcileEventRepository {
	return &ReconcileEventRepository{db: db}
}

func (r *ReconcileEventRepository) Create(ctx context.Context, event *entity.ReconcileEvent) error {
	query := `
		INSERT INTO reconcile_events (
			record_kind, order_id, event_type, old_status, new_status, gateway_payment_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.RecordKind,
		event.OrderID,
		event.EventType,
		nullableInt32Value(event.OldStatus),
		event.NewStatus,
		nullableStringValue(event.GatewayPaymentID),
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)

	return nil
}
