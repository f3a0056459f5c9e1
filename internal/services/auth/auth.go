// Package auth holds the authentication orchestrator: registration,
// credential verification, guest and OAuth login, token lifecycle and
// the password-reset flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teamplaymate/coaching-backend/internal/lib/jwt"
	"github.com/teamplaymate/coaching-backend/internal/lib/password"
	"github.com/teamplaymate/coaching-backend/internal/lib/resetcode"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/plans"
	"github.com/teamplaymate/coaching-backend/internal/storage/repository"
)

// Errors mapped to HTTP statuses by the handlers. Login failures are
// deliberately indistinguishable between unknown email and wrong
// password.
var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrResetTicketInvalid = errors.New("invalid or expired reset code")
)

// AccountRepository is the credential store contract.
type AccountRepository interface {
	CreateAccount(ctx context.Context, acc models.Account) (string, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccount(ctx context.Context, uid string) (*models.Account, error)
	UpdateSportPreference(ctx context.Context, uid, sport string) (*models.Account, error)
	SetResetTicket(ctx context.Context, uid, tokenHash string, expires time.Time) error
	ClearResetTicket(ctx context.Context, uid string) error
	GetAccountByResetHash(ctx context.Context, email, tokenHash string, now time.Time) (*models.Account, error)
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
}

// Notifier enqueues outbound emails.
type Notifier interface {
	PublishWelcome(ctx context.Context, email, name string) error
	PublishResetCode(ctx context.Context, email, name, code string) error
}

// RevocationStore remembers logged-out token ids until they would have
// expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Session pairs a resolved account with a freshly issued token.
type Session struct {
	Account *models.Account
	Token   string
}

// RegisterParams are the validated inputs of a registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Location string
	Role     string
	Plan     string
}

// AuthService coordinates the credential store, token maker, reset
// flow and notification queue.
type AuthService struct {
	accounts AccountRepository
	jwtMaker jwt.Maker
	notifier Notifier
	revoked  RevocationStore
	log      *slog.Logger
}

// New creates the auth orchestrator.
func New(accounts AccountRepository, jwtMaker jwt.Maker, notifier Notifier, revoked RevocationStore, log *slog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		jwtMaker: jwtMaker,
		notifier: notifier,
		revoked:  revoked,
		log:      log,
	}
}

func (s *AuthService) issueSession(acc *models.Account) (*Session, error) {
	token, err := s.jwtMaker.GenerateToken(acc.UID, acc.Role, acc.Plan)
	if err != nil {
		return nil, err
	}
	return &Session{Account: acc, Token: token}, nil
}

// Register creates a coach account with a hashed password and issues a
// session. The welcome notification is best-effort: its failure never
// aborts the registration.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*Session, error) {
	const op = "auth.Register"

	if _, err := s.accounts.GetAccountByEmail(ctx, p.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	role := p.Role
	if role == "" {
		role = models.RoleCoach
	}
	plan := plans.Canonical(p.Plan)
	now := time.Now().UTC()

	acc := models.Account{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hashed,
		Role:         role,
		Plan:         plan,
		PlanStartsAt: &now,
		PlanEndsAt:   plans.EndDate(plan, now),
		Location:     p.Location,
	}
	uid, err := s.accounts.CreateAccount(ctx, acc)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.accounts.GetAccount(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.notifier.PublishWelcome(ctx, created.Email, created.Name); err != nil {
		s.log.Warn("failed to queue welcome email", sl.Err(err))
	}

	return s.issueSession(created)
}

// Login verifies the password and issues a session. Unknown email and
// wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Session, error) {
	const op = "auth.Login"

	acc, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(acc.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(acc)
}

// GuestLogin synthesizes a throwaway guest account and issues a
// guest-scoped session. The time-based email suffix rules out
// uniqueness conflicts.
func (s *AuthService) GuestLogin(ctx context.Context) (*Session, error) {
	const op = "auth.GuestLogin"

	now := time.Now().UTC()
	hashed, err := password.GetHash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	acc := models.Account{
		Name:         fmt.Sprintf("Guest%04d", now.UnixNano()%10000),
		Email:        fmt.Sprintf("guest%d@guest.teamplaymate.com", now.UnixNano()),
		PasswordHash: hashed,
		Role:         models.RoleGuest,
		Plan:         plans.Free,
		PlanStartsAt: &now,
		IsGuest:      true,
	}
	uid, err := s.accounts.CreateAccount(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.accounts.GetAccount(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issueSession(created)
}

// OAuthLogin resolves a provider-verified profile to a local account,
// creating a free coach account on first login.
func (s *AuthService) OAuthLogin(ctx context.Context, email, name, photo string) (*Session, error) {
	const op = "auth.OAuthLogin"

	acc, err := s.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		now := time.Now().UTC()
		hashed, hashErr := password.GetHash(uuid.NewString())
		if hashErr != nil {
			return nil, fmt.Errorf("%s: %w", op, hashErr)
		}
		uid, createErr := s.accounts.CreateAccount(ctx, models.Account{
			Name:         name,
			Email:        email,
			PasswordHash: hashed,
			Role:         models.RoleCoach,
			Plan:         plans.Free,
			PlanStartsAt: &now,
			Photo:        photo,
		})
		if createErr != nil {
			return nil, fmt.Errorf("%s: %w", op, createErr)
		}
		acc, err = s.accounts.GetAccount(ctx, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issueSession(acc)
}

// ValidateToken verifies a token end to end: signature, expiry,
// revocation and subject existence.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.Account, *jwt.Claims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.ValidateToken: %w", err)
	}
	if revoked {
		return nil, nil, ErrInvalidToken
	}

	acc, err := s.accounts.GetAccount(ctx, claims.AccountUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("auth.ValidateToken: %w", err)
	}
	return acc, claims, nil
}

// RefreshToken reissues a token with the same claims and a fresh
// expiry. Expired tokens are accepted; tampered or revoked ones fail.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.jwtMaker.ParseTokenAllowExpired(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}
	if revoked {
		return "", ErrInvalidToken
	}

	return s.jwtMaker.GenerateToken(claims.AccountUID, claims.Role, claims.Plan)
}

// Logout revokes the token id for its remaining lifetime. An already
// expired token has nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtMaker.ParseTokenAllowExpired(token)
	if err != nil {
		return ErrInvalidToken
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.RemainingLife(time.Now()))
}

// GetAccount loads an account by UID.
func (s *AuthService) GetAccount(ctx context.Context, uid string) (*models.Account, error) {
	acc, err := s.accounts.GetAccount(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

// UpdateSportPreference stores the preferred sport. Idempotent.
func (s *AuthService) UpdateSportPreference(ctx context.Context, uid, sport string) (*models.Account, error) {
	acc, err := s.accounts.UpdateSportPreference(ctx, uid, sport)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

// ForgotPassword issues a reset ticket: a 6-digit code whose SHA-256
// hash is stored with a 10-minute expiry, the plaintext queued for
// email delivery. When queueing fails the ticket is rolled back so the
// account is not stuck with an undeliverable pending reset.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	acc, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := resetcode.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	expires := time.Now().UTC().Add(resetcode.TTL)
	if err := s.accounts.SetResetTicket(ctx, acc.UID, resetcode.Hash(code), expires); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.notifier.PublishResetCode(ctx, acc.Email, acc.Name, code); err != nil {
		s.log.Error("failed to queue reset email, rolling ticket back", sl.Err(err))
		if clearErr := s.accounts.ClearResetTicket(ctx, acc.UID); clearErr != nil {
			s.log.Error("failed to roll back reset ticket", sl.Err(clearErr))
		}
	}
	return nil
}

// VerifyResetCode checks a code against the pending ticket without
// consuming it.
func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) error {
	_, err := s.accounts.GetAccountByResetHash(ctx, email, resetcode.Hash(code), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTicketInvalid
		}
		return fmt.Errorf("auth.VerifyResetCode: %w", err)
	}
	return nil
}

// ResetPassword consumes a valid ticket, re-hashes the password and
// issues a fresh session (auto-login after reset). The ticket is
// cleared in the same statement that swaps the hash, so it is
// single-use.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (*Session, error) {
	const op = "auth.ResetPassword"

	acc, err := s.accounts.GetAccountByResetHash(ctx, email, resetcode.Hash(code), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResetTicketInvalid
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.accounts.UpdatePassword(ctx, acc.UID, hashed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.issueSession(acc)
}
