// Package payment orchestrates checkout against the payment gateway
// and activates plans once funds are captured.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/paymentprovider"
	"github.com/teamplaymate/coaching-backend/internal/plans"
	"github.com/teamplaymate/coaching-backend/internal/storage/repository"
)

var (
	ErrPlanUnknown       = errors.New("unknown plan")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrForbidden         = errors.New("payment belongs to another account")
	ErrPaymentIncomplete = errors.New("payment was not completed")
	ErrGateway           = errors.New("payment gateway unavailable")
)

// PaymentRepository is the persistence contract for payments.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, p models.Payment) (string, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id, status, captureID string) error
	ListPaymentsByAccount(ctx context.Context, accountUID string) ([]*models.Payment, error)
	ListAllPayments(ctx context.Context) ([]*models.Payment, error)
}

// SubscriptionRepository records the subscription created on
// activation.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
}

// AccountRepository updates the plan fields on the account itself.
type AccountRepository interface {
	UpdatePlan(ctx context.Context, uid, plan string, startsAt time.Time, endsAt *time.Time) error
}

// ProviderClient is the gateway surface the service needs: create an
// order for approval and capture it afterwards.
type ProviderClient interface {
	CreateOrder(ctx context.Context, value, currency, description string) (*paymentprovider.CreateOrderResponse, error)
	CaptureOrder(ctx context.Context, orderID string) (*paymentprovider.CaptureOrderResponse, error)
}

// CheckoutResult is what a checkout attempt yields: either an
// immediately activated free plan or a pending payment with the URL
// the payer must visit.
type CheckoutResult struct {
	PaymentID   string `json:"payment_id"`
	OrderID     string `json:"order_id,omitempty"`
	Status      string `json:"status"`
	ApprovalURL string `json:"approval_url,omitempty"`
}

// PaymentService drives the checkout flow.
type PaymentService struct {
	payments      PaymentRepository
	subscriptions SubscriptionRepository
	accounts      AccountRepository
	provider      ProviderClient
	log           *slog.Logger
}

// New creates the payment orchestrator.
func New(payments PaymentRepository, subscriptions SubscriptionRepository,
	accounts AccountRepository, provider ProviderClient, log *slog.Logger) *PaymentService {
	return &PaymentService{
		payments:      payments,
		subscriptions: subscriptions,
		accounts:      accounts,
		provider:      provider,
		log:           log,
	}
}

// activate puts the account on the plan and records the subscription
// that governs it.
func (s *PaymentService) activate(ctx context.Context, accountUID, plan string, autoRenew bool) error {
	now := time.Now().UTC()
	endDate := plans.EndDate(plan, now)

	if err := s.accounts.UpdatePlan(ctx, accountUID, plan, now, endDate); err != nil {
		return err
	}
	_, err := s.subscriptions.CreateSubscription(ctx, models.Subscription{
		AccountUID: accountUID,
		Plan:       plan,
		Price:      plans.Price(plan),
		Currency:   "USD",
		Status:     models.SubscriptionActive,
		StartDate:  now,
		EndDate:    endDate,
		AutoRenew:  autoRenew,
		CreatedBy:  accountUID,
	})
	return err
}

// CreatePayment starts a checkout for the plan. A free plan activates
// immediately without touching the gateway; a paid plan creates a
// gateway order and a pending payment, returning the approval URL.
func (s *PaymentService) CreatePayment(ctx context.Context, accountUID, planName string) (*CheckoutResult, error) {
	const op = "payment.CreatePayment"

	if !plans.IsKnown(planName) {
		return nil, ErrPlanUnknown
	}
	plan := plans.Canonical(planName)
	price := plans.Price(plan)

	if price == 0 {
		id, err := s.payments.CreatePayment(ctx, models.Payment{
			AccountUID: accountUID,
			PlanName:   plan,
			Amount:     0,
			Currency:   "USD",
			Status:     models.PaymentSucceeded,
			Method:     models.MethodManual,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.activate(ctx, accountUID, plan, false); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &CheckoutResult{PaymentID: id, Status: models.PaymentSucceeded}, nil
	}

	order, err := s.provider.CreateOrder(ctx, fmt.Sprintf("%.2f", price), "USD",
		fmt.Sprintf("TeamPlayMate %s plan", plan))
	if err != nil {
		s.log.Error("gateway order creation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrGateway)
	}

	id, err := s.payments.CreatePayment(ctx, models.Payment{
		AccountUID: accountUID,
		PlanName:   plan,
		Amount:     price,
		Currency:   "USD",
		Status:     models.PaymentPending,
		Method:     models.MethodPayPal,
		OrderID:    order.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &CheckoutResult{
		PaymentID:   id,
		OrderID:     order.ID,
		Status:      models.PaymentPending,
		ApprovalURL: order.ApprovalURL(),
	}, nil
}

// ConfirmPayment captures an approved order and activates the plan.
// Only the owner or an admin may confirm. An already succeeded payment
// confirms idempotently.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID, callerUID, callerRole string) (*models.Payment, error) {
	const op = "payment.ConfirmPayment"

	p, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if callerRole != models.RoleAdmin && p.AccountUID != callerUID {
		return nil, ErrForbidden
	}
	if p.Status == models.PaymentSucceeded {
		return p, nil
	}

	capture, err := s.provider.CaptureOrder(ctx, p.OrderID)
	if err != nil {
		s.log.Error("gateway capture failed", sl.Err(err),
			slog.String("order_id", p.OrderID))
		return nil, fmt.Errorf("%s: %w", op, ErrGateway)
	}

	if capture.Status != paymentprovider.StatusCompleted {
		if err := s.payments.UpdatePaymentStatus(ctx, p.ID, models.PaymentFailed, capture.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, ErrPaymentIncomplete
	}

	if err := s.payments.UpdatePaymentStatus(ctx, p.ID, models.PaymentSucceeded, capture.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.activate(ctx, p.AccountUID, p.PlanName, true); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.payments.GetPayment(ctx, p.ID)
}

// ListPayments returns every payment for an admin caller, the caller's
// own payments otherwise.
func (s *PaymentService) ListPayments(ctx context.Context, callerUID, callerRole string) ([]*models.Payment, error) {
	if callerRole == models.RoleAdmin {
		return s.payments.ListAllPayments(ctx)
	}
	return s.payments.ListPaymentsByAccount(ctx, callerUID)
}

// HandleWebhookEvent reconciles a gateway notification. A capture
// completion for a still-pending order marks the payment succeeded and
// activates the plan; everything else is logged and acknowledged.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, eventType, orderID, captureID string) error {
	const op = "payment.HandleWebhookEvent"

	if !strings.EqualFold(eventType, "PAYMENT.CAPTURE.COMPLETED") &&
		!strings.EqualFold(eventType, "CHECKOUT.ORDER.COMPLETED") {
		s.log.Info("ignoring webhook event", slog.String("event_type", eventType))
		return nil
	}
	if orderID == "" {
		s.log.Warn("webhook event without order id", slog.String("event_type", eventType))
		return nil
	}

	p, err := s.payments.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("webhook for unknown order", slog.String("order_id", orderID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if p.Status == models.PaymentSucceeded {
		return nil
	}

	if err := s.payments.UpdatePaymentStatus(ctx, p.ID, models.PaymentSucceeded, captureID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.activate(ctx, p.AccountUID, p.PlanName, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment reconciled from webhook",
		slog.String("payment_id", p.ID), slog.String("order_id", orderID))
	return nil
}
