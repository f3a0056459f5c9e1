// Package subscription manages the subscription records backing each
// account's plan: the current-subscription lookup, admin CRUD and the
// owner-facing upgrade and cancel operations.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/plans"
	"github.com/teamplaymate/coaching-backend/internal/storage/repository"
)

var (
	ErrNotFound    = errors.New("subscription not found")
	ErrForbidden   = errors.New("subscription belongs to another account")
	ErrPlanUnknown = errors.New("unknown plan")
)

const cacheTTL = 5 * time.Minute

// Repository is the persistence contract for subscriptions.
type Repository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	GetCurrentSubscription(ctx context.Context, accountUID string) (*models.Subscription, error)
	ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub models.Subscription) error
	DeleteSubscription(ctx context.Context, id string) (int64, error)
}

// AccountRepository updates the account's plan window when a
// subscription changes it.
type AccountRepository interface {
	UpdatePlan(ctx context.Context, uid, plan string, startsAt time.Time, endsAt *time.Time) error
}

// Cache is the read-through cache over current-subscription lookups.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SubscriptionService serves subscription reads through the cache and
// keeps the account plan in step on writes.
type SubscriptionService struct {
	repo     Repository
	accounts AccountRepository
	cache    Cache
	log      *slog.Logger
}

// New creates the subscription service.
func New(repo Repository, accounts AccountRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		accounts: accounts,
		cache:    cache,
		log:      log,
	}
}

func currentKey(accountUID string) string {
	return "subscription:current:" + accountUID
}

// CreateParams are the validated inputs of a created subscription.
type CreateParams struct {
	AccountUID string
	Plan       string
	AutoRenew  bool
}

// Create records a subscription for the account and moves its plan.
// Admins may create for any account; everyone else only for themselves
// (paid-plan activation still goes through checkout).
func (s *SubscriptionService) Create(ctx context.Context, callerUID, callerRole string, p CreateParams) (*models.Subscription, error) {
	const op = "subscription.Create"

	if callerRole != models.RoleAdmin && p.AccountUID != callerUID {
		return nil, ErrForbidden
	}
	if !plans.IsKnown(p.Plan) {
		return nil, ErrPlanUnknown
	}
	plan := plans.Canonical(p.Plan)
	now := time.Now().UTC()

	sub := models.Subscription{
		AccountUID: p.AccountUID,
		Plan:       plan,
		Price:      plans.Price(plan),
		Currency:   "USD",
		Status:     models.SubscriptionActive,
		StartDate:  now,
		EndDate:    plans.EndDate(plan, now),
		AutoRenew:  p.AutoRenew,
		CreatedBy:  callerUID,
	}
	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.accounts.UpdatePlan(ctx, p.AccountUID, plan, now, sub.EndDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, p.AccountUID)

	return s.repo.GetSubscription(ctx, id)
}

// EnsureForAccount guarantees a subscription record exists, creating a
// free one when the account has none. Idempotent.
func (s *SubscriptionService) EnsureForAccount(ctx context.Context, accountUID string) (*models.Subscription, error) {
	const op = "subscription.EnsureForAccount"

	sub, err := s.GetCurrent(ctx, accountUID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	id, err := s.repo.CreateSubscription(ctx, models.Subscription{
		AccountUID: accountUID,
		Plan:       plans.Free,
		Price:      0,
		Currency:   "USD",
		Status:     models.SubscriptionActive,
		StartDate:  now,
		AutoRenew:  false,
		CreatedBy:  accountUID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, accountUID)
	return s.repo.GetSubscription(ctx, id)
}

// GetCurrent returns the subscription governing the account, serving
// repeated lookups from the cache.
func (s *SubscriptionService) GetCurrent(ctx context.Context, accountUID string) (*models.Subscription, error) {
	const op = "subscription.GetCurrent"

	var cached models.Subscription
	found, err := s.cache.Get(ctx, currentKey(accountUID), &cached)
	if err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	sub, err := s.repo.GetCurrentSubscription(ctx, accountUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, currentKey(accountUID), sub, cacheTTL); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return sub, nil
}

// List returns every subscription for an admin, the caller's current
// one otherwise.
func (s *SubscriptionService) List(ctx context.Context, callerUID, callerRole string) ([]*models.Subscription, error) {
	if callerRole == models.RoleAdmin {
		return s.repo.ListAllSubscriptions(ctx)
	}
	sub, err := s.GetCurrent(ctx, callerUID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []*models.Subscription{sub}, nil
}

// UpdateParams are the mutable fields an admin may overwrite.
type UpdateParams struct {
	Plan      string
	Status    string
	AutoRenew bool
}

// Update overwrites a subscription's plan, status and renewal flag.
func (s *SubscriptionService) Update(ctx context.Context, id string, p UpdateParams) (*models.Subscription, error) {
	const op = "subscription.Update"

	sub, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plans.IsKnown(p.Plan) {
		return nil, ErrPlanUnknown
	}

	plan := plans.Canonical(p.Plan)
	sub.Plan = plan
	sub.Price = plans.Price(plan)
	sub.Status = p.Status
	sub.AutoRenew = p.AutoRenew
	sub.EndDate = plans.EndDate(plan, sub.StartDate)

	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, sub.AccountUID)
	return s.repo.GetSubscription(ctx, id)
}

// Upgrade moves the caller's subscription to a higher plan, resetting
// the validity window and turning renewal on. The account plan follows.
func (s *SubscriptionService) Upgrade(ctx context.Context, id, callerUID, planName string) (*models.Subscription, error) {
	const op = "subscription.Upgrade"

	sub, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.AccountUID != callerUID {
		return nil, ErrForbidden
	}
	if !plans.IsKnown(planName) {
		return nil, ErrPlanUnknown
	}

	plan := plans.Canonical(planName)
	now := time.Now().UTC()
	sub.Plan = plan
	sub.Price = plans.Price(plan)
	sub.Status = models.SubscriptionActive
	sub.AutoRenew = true
	sub.EndDate = plans.EndDate(plan, now)

	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.accounts.UpdatePlan(ctx, sub.AccountUID, plan, now, sub.EndDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, sub.AccountUID)
	return s.repo.GetSubscription(ctx, id)
}

// Cancel marks the caller's subscription canceled and stops renewal.
// The plan and its end date stay untouched: entitlements run until the
// already-paid period expires.
func (s *SubscriptionService) Cancel(ctx context.Context, id, callerUID string) (*models.Subscription, error) {
	const op = "subscription.Cancel"

	sub, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.AccountUID != callerUID {
		return nil, ErrForbidden
	}

	sub.Status = models.SubscriptionCanceled
	sub.AutoRenew = false
	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, sub.AccountUID)
	return s.repo.GetSubscription(ctx, id)
}

// Delete removes a subscription record entirely. Admins may delete any
// subscription; everyone else only their own.
func (s *SubscriptionService) Delete(ctx context.Context, id, callerUID, callerRole string) error {
	const op = "subscription.Delete"

	sub, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if callerRole != models.RoleAdmin && sub.AccountUID != callerUID {
		return ErrForbidden
	}
	n, err := s.repo.DeleteSubscription(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, sub.AccountUID)
	return nil
}

func (s *SubscriptionService) getByID(ctx context.Context, id string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, accountUID string) {
	if err := s.cache.Invalidate(ctx, currentKey(accountUID)); err != nil {
		s.log.Warn("cache invalidation failed", sl.Err(err))
	}
}
