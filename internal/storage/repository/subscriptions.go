package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teamplaymate/coaching-backend/internal/models"
)

const subscriptionColumns = `id, account_uid, plan, price, currency, status,
			      start_date, end_date, auto_renew, created_by, created_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var endDate sql.NullTime
	if err := row.Scan(&sub.ID, &sub.AccountUID, &sub.Plan, &sub.Price, &sub.Currency,
		&sub.Status, &sub.StartDate, &endDate, &sub.AutoRenew, &sub.CreatedBy,
		&sub.CreatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	return sub, nil
}

// CreateSubscription stores a new subscription and returns its id.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO subscriptions (account_uid, plan, price, currency, status,
			      start_date, end_date, auto_renew, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id;`
	err := s.DB.QueryRowContext(ctx, query,
		sub.AccountUID, sub.Plan, sub.Price, sub.Currency, sub.Status,
		sub.StartDate, sub.EndDate, sub.AutoRenew, sub.CreatedBy).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscription returns a subscription by id.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetCurrentSubscription returns the newest subscription governing the
// account's entitlements.
func (s *Storage) GetCurrentSubscription(ctx context.Context, accountUID string) (*models.Subscription, error) {
	const op = "storage.GetCurrentSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE account_uid = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, accountUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListAllSubscriptions returns every subscription, newest first.
func (s *Storage) ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSubscription overwrites the mutable fields of a subscription.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan = $1, price = $2, status = $3, end_date = $4, auto_renew = $5
			  WHERE id = $6`
	res, err := s.DB.ExecContext(ctx, query,
		sub.Plan, sub.Price, sub.Status, sub.EndDate, sub.AutoRenew, sub.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteSubscription removes a subscription and returns the number of
// deleted rows.
func (s *Storage) DeleteSubscription(ctx context.Context, id string) (int64, error) {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
