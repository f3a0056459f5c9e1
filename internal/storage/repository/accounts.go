package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/teamplaymate/coaching-backend/internal/models"
)

const uniqueViolation = "23505"

const accountColumns = `uid, name, email, password_hash, role, plan,
			      plan_starts_at, plan_ends_at, location, photo, sport, sport_selected,
			      is_guest, password_reset_token_hash, password_reset_expires, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	a := &models.Account{}
	var planStartsAt, planEndsAt, resetExpires sql.NullTime
	var location, photo, sport, resetHash sql.NullString
	if err := row.Scan(&a.UID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.Plan,
		&planStartsAt, &planEndsAt, &location, &photo, &sport, &a.SportSelected,
		&a.IsGuest, &resetHash, &resetExpires, &a.CreatedAt); err != nil {
		return nil, err
	}
	if planStartsAt.Valid {
		a.PlanStartsAt = &planStartsAt.Time
	}
	if planEndsAt.Valid {
		a.PlanEndsAt = &planEndsAt.Time
	}
	if resetExpires.Valid {
		a.ResetExpires = &resetExpires.Time
	}
	a.Location = location.String
	a.Photo = photo.String
	a.Sport = sport.String
	a.ResetTokenHash = resetHash.String
	return a, nil
}

// CreateAccount stores a new account and returns its UID. A duplicate
// email surfaces as ErrEmailTaken.
func (s *Storage) CreateAccount(ctx context.Context, acc models.Account) (string, error) {
	const op = "storage.CreateAccount"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO accounts (name, email, password_hash, role, plan,
			      plan_starts_at, plan_ends_at, location, photo, is_guest)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING uid;`
	err := s.DB.QueryRowContext(ctx, query,
		acc.Name, acc.Email, acc.PasswordHash, acc.Role, acc.Plan,
		acc.PlanStartsAt, acc.PlanEndsAt, nullIfEmpty(acc.Location),
		nullIfEmpty(acc.Photo), acc.IsGuest).Scan(&newUID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetAccountByEmail returns the account with its password hash, which
// the login path needs for credential verification.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetAccountByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	acc, err := scanAccount(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// GetAccount returns the account by its UID.
func (s *Storage) GetAccount(ctx context.Context, uid string) (*models.Account, error) {
	const op = "storage.GetAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE uid = $1`
	acc, err := scanAccount(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// UpdateSportPreference sets the preferred sport and returns the
// updated account. The operation is idempotent.
func (s *Storage) UpdateSportPreference(ctx context.Context, uid, sport string) (*models.Account, error) {
	const op = "storage.UpdateSportPreference"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET sport = $1, sport_selected = TRUE
			  WHERE uid = $2
			  RETURNING ` + accountColumns
	acc, err := scanAccount(s.DB.QueryRowContext(ctx, query, sport, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// SetResetTicket stores the hash of a freshly issued reset code and its
// expiry. A second ticket overwrites the first: last writer wins.
func (s *Storage) SetResetTicket(ctx context.Context, uid, tokenHash string, expires time.Time) error {
	const op = "storage.SetResetTicket"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET password_reset_token_hash = $1, password_reset_expires = $2
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, tokenHash, expires, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ClearResetTicket drops a pending reset ticket, used to roll back when
// the notification could not be delivered.
func (s *Storage) ClearResetTicket(ctx context.Context, uid string) error {
	const op = "storage.ClearResetTicket"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET password_reset_token_hash = NULL, password_reset_expires = NULL
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAccountByResetHash finds the account whose pending reset ticket
// matches the code hash and has not expired yet.
func (s *Storage) GetAccountByResetHash(ctx context.Context, email, tokenHash string, now time.Time) (*models.Account, error) {
	const op = "storage.GetAccountByResetHash"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE email = $1
			    AND password_reset_token_hash = $2
			    AND password_reset_expires > $3`
	acc, err := scanAccount(s.DB.QueryRowContext(ctx, query, email, tokenHash, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// UpdatePassword swaps in the new password hash and consumes the reset
// ticket in the same statement, so the ticket is single-use.
func (s *Storage) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET password_hash = $1,
			      password_reset_token_hash = NULL,
			      password_reset_expires = NULL
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdatePlan moves the account onto a new plan with its validity
// window. A nil endsAt means the plan never expires.
func (s *Storage) UpdatePlan(ctx context.Context, uid, plan string, startsAt time.Time, endsAt *time.Time) error {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET plan = $1, plan_starts_at = $2, plan_ends_at = $3
			  WHERE uid = $4`
	res, err := s.DB.ExecContext(ctx, query, plan, startsAt, endsAt, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
