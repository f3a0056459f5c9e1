package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teamplaymate/coaching-backend/internal/models"
)

const paymentColumns = `id, account_uid, plan_name, amount, currency, status,
			      method, order_id, capture_id, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var orderID, captureID sql.NullString
	if err := row.Scan(&p.ID, &p.AccountUID, &p.PlanName, &p.Amount, &p.Currency,
		&p.Status, &p.Method, &orderID, &captureID, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.OrderID = orderID.String
	p.CaptureID = captureID.String
	return p, nil
}

// CreatePayment stores a new payment record and returns its id.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (string, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO payments (account_uid, plan_name, amount, currency, status, method, order_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id;`
	err := s.DB.QueryRowContext(ctx, query,
		p.AccountUID, p.PlanName, p.Amount, p.Currency, p.Status, p.Method,
		nullIfEmpty(p.OrderID)).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPayment returns a payment by id.
func (s *Storage) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetPaymentByOrderID returns the payment holding the given gateway
// order id. Used by webhook reconciliation.
func (s *Storage) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	const op = "storage.GetPaymentByOrderID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePaymentStatus moves a payment to a new status and records the
// gateway capture id when present.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, id, status, captureID string) error {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $1, capture_id = COALESCE($2, capture_id)
			  WHERE id = $3`
	res, err := s.DB.ExecContext(ctx, query, status, nullIfEmpty(captureID), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListPaymentsByAccount returns the account's payments, newest first.
func (s *Storage) ListPaymentsByAccount(ctx context.Context, accountUID string) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + `
			  FROM payments
			  WHERE account_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, accountUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllPayments returns every payment, newest first. Admin use only.
func (s *Storage) ListAllPayments(ctx context.Context) ([]*models.Payment, error) {
	const op = "storage.ListAllPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + `
			  FROM payments
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
