package repository

import (
	"context"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// IncrementDailySwipeLimit is additive so that two completed purchases for
// the same user stack instead of overwriting each other.
func (r *UserRepository) IncrementDailySwipeLimit(ctx context.Context, userID string, delta int32, now time.Time) error {
	query := `
		UPDATE users
		SET daily_swipe_limit = daily_swipe_limit + ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, delta, now, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GrantPackage applies a purchased subscription package to the user record.
func (r *UserRepository) GrantPackage(ctx context.Context, userID, packageID string) error {
	now := time.Now().UTC()
	query := `
		UPDATE users
		SET active_package_id = ?, package_activated_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, packageID, now, now, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}
