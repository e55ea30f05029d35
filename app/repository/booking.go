package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/molle-app/ms-go-reconcile/app/entity"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	query := `
		SELECT id, event_id, user_id, status, created_at, updated_at
		FROM bookings
		WHERE id = ?
		LIMIT 1
	`

	booking := &entity.Booking{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.EventID,
		&booking.UserID,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return booking, nil
}

// Confirm flips the booking to confirmed regardless of its current status:
// the caller only reaches here after winning the payment's conditional
// update, so repeating the write is harmless.
func (r *BookingRepository) Confirm(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE bookings
		SET status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, entity.BookingConfirmed, now, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	return nil
}
