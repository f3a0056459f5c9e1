package payment

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/paymentprovider"
	"github.com/teamplaymate/coaching-backend/internal/plans"
	"github.com/teamplaymate/coaching-backend/internal/storage/repository"
)

type mockPayments struct {
	createFunc       func(ctx context.Context, p models.Payment) (string, error)
	getFunc          func(ctx context.Context, id string) (*models.Payment, error)
	getByOrderFunc   func(ctx context.Context, orderID string) (*models.Payment, error)
	updateStatusFunc func(ctx context.Context, id, status, captureID string) error
	listByAccFunc    func(ctx context.Context, accountUID string) ([]*models.Payment, error)
	listAllFunc      func(ctx context.Context) ([]*models.Payment, error)
}

func (m *mockPayments) CreatePayment(ctx context.Context, p models.Payment) (string, error) {
	return m.createFunc(ctx, p)
}

func (m *mockPayments) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	return m.getFunc(ctx, id)
}

func (m *mockPayments) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return m.getByOrderFunc(ctx, orderID)
}

func (m *mockPayments) UpdatePaymentStatus(ctx context.Context, id, status, captureID string) error {
	return m.updateStatusFunc(ctx, id, status, captureID)
}

func (m *mockPayments) ListPaymentsByAccount(ctx context.Context, accountUID string) ([]*models.Payment, error) {
	return m.listByAccFunc(ctx, accountUID)
}

func (m *mockPayments) ListAllPayments(ctx context.Context) ([]*models.Payment, error) {
	return m.listAllFunc(ctx)
}

type mockSubscriptions struct {
	createFunc func(ctx context.Context, sub models.Subscription) (string, error)
}

func (m *mockSubscriptions) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	if m.createFunc == nil {
		return "sub-1", nil
	}
	return m.createFunc(ctx, sub)
}

type mockAccounts struct {
	updatePlanFunc func(ctx context.Context, uid, plan string, startsAt time.Time, endsAt *time.Time) error
}

func (m *mockAccounts) UpdatePlan(ctx context.Context, uid, plan string, startsAt time.Time, endsAt *time.Time) error {
	if m.updatePlanFunc == nil {
		return nil
	}
	return m.updatePlanFunc(ctx, uid, plan, startsAt, endsAt)
}

type mockProvider struct {
	createOrderFunc  func(ctx context.Context, value, currency, description string) (*paymentprovider.CreateOrderResponse, error)
	captureOrderFunc func(ctx context.Context, orderID string) (*paymentprovider.CaptureOrderResponse, error)
}

func (m *mockProvider) CreateOrder(ctx context.Context, value, currency, description string) (*paymentprovider.CreateOrderResponse, error) {
	return m.createOrderFunc(ctx, value, currency, description)
}

func (m *mockProvider) CaptureOrder(ctx context.Context, orderID string) (*paymentprovider.CaptureOrderResponse, error) {
	return m.captureOrderFunc(ctx, orderID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCreatePayment_FreePlanActivatesImmediately(t *testing.T) {
	var stored models.Payment
	var createdSub models.Subscription
	planUpdated := false

	payments := &mockPayments{
		createFunc: func(_ context.Context, p models.Payment) (string, error) {
			stored = p
			return "pay-1", nil
		},
	}
	subs := &mockSubscriptions{
		createFunc: func(_ context.Context, sub models.Subscription) (string, error) {
			createdSub = sub
			return "sub-1", nil
		},
	}
	accounts := &mockAccounts{
		updatePlanFunc: func(_ context.Context, uid, plan string, _ time.Time, endsAt *time.Time) error {
			planUpdated = true
			assert.Equal(t, "uid-1", uid)
			assert.Equal(t, plans.Free, plan)
			assert.Nil(t, endsAt)
			return nil
		},
	}
	provider := &mockProvider{
		createOrderFunc: func(_ context.Context, _, _, _ string) (*paymentprovider.CreateOrderResponse, error) {
			t.Fatal("free plan must not reach the gateway")
			return nil, nil
		},
	}

	svc := New(payments, subs, accounts, provider, testLogger())
	res, err := svc.CreatePayment(context.Background(), "uid-1", "basic")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentSucceeded, res.Status)
	assert.Empty(t, res.ApprovalURL)
	assert.Equal(t, models.PaymentSucceeded, stored.Status)
	assert.Equal(t, models.MethodManual, stored.Method)
	assert.True(t, planUpdated)
	assert.Equal(t, models.SubscriptionActive, createdSub.Status)
	assert.Nil(t, createdSub.EndDate)
}

func TestCreatePayment_PaidPlanCreatesPendingOrder(t *testing.T) {
	var stored models.Payment
	payments := &mockPayments{
		createFunc: func(_ context.Context, p models.Payment) (string, error) {
			stored = p
			return "pay-2", nil
		},
	}
	provider := &mockProvider{
		createOrderFunc: func(_ context.Context, value, currency, _ string) (*paymentprovider.CreateOrderResponse, error) {
			assert.Equal(t, "49.99", value)
			assert.Equal(t, "USD", currency)
			return &paymentprovider.CreateOrderResponse{
				ID:     "ORDER-1",
				Status: "CREATED",
				Links: []paymentprovider.Link{
					{Href: "https://gateway.example/approve/ORDER-1", Rel: "approve"},
				},
			}, nil
		},
	}

	svc := New(payments, &mockSubscriptions{}, &mockAccounts{}, provider, testLogger())
	res, err := svc.CreatePayment(context.Background(), "uid-1", plans.Pro)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, res.Status)
	assert.Equal(t, "ORDER-1", res.OrderID)
	assert.Equal(t, "https://gateway.example/approve/ORDER-1", res.ApprovalURL)
	assert.Equal(t, models.PaymentPending, stored.Status)
	assert.Equal(t, models.MethodPayPal, stored.Method)
	assert.InDelta(t, 49.99, stored.Amount, 0.001)
}

func TestCreatePayment_UnknownPlan(t *testing.T) {
	svc := New(&mockPayments{}, &mockSubscriptions{}, &mockAccounts{}, &mockProvider{}, testLogger())
	_, err := svc.CreatePayment(context.Background(), "uid-1", "platinum")
	assert.ErrorIs(t, err, ErrPlanUnknown)
}

func TestCreatePayment_GatewayDown(t *testing.T) {
	provider := &mockProvider{
		createOrderFunc: func(_ context.Context, _, _, _ string) (*paymentprovider.CreateOrderResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := New(&mockPayments{}, &mockSubscriptions{}, &mockAccounts{}, provider, testLogger())
	_, err := svc.CreatePayment(context.Background(), "uid-1", plans.Premium)
	assert.ErrorIs(t, err, ErrGateway)
}

func TestConfirmPayment(t *testing.T) {
	pending := models.Payment{
		ID:         "pay-1",
		AccountUID: "uid-1",
		PlanName:   plans.Pro,
		Amount:     49.99,
		Currency:   "USD",
		Status:     models.PaymentPending,
		Method:     models.MethodPayPal,
		OrderID:    "ORDER-1",
	}

	t.Run("capture completed activates plan", func(t *testing.T) {
		current := pending
		var planEndsAt *time.Time
		payments := &mockPayments{
			getFunc: func(_ context.Context, _ string) (*models.Payment, error) {
				cp := current
				return &cp, nil
			},
			updateStatusFunc: func(_ context.Context, id, status, captureID string) error {
				assert.Equal(t, "pay-1", id)
				assert.Equal(t, models.PaymentSucceeded, status)
				assert.Equal(t, "CAP-1", captureID)
				current.Status = status
				current.CaptureID = captureID
				return nil
			},
		}
		accounts := &mockAccounts{
			updatePlanFunc: func(_ context.Context, _, plan string, startsAt time.Time, endsAt *time.Time) error {
				assert.Equal(t, plans.Pro, plan)
				planEndsAt = endsAt
				assert.WithinDuration(t, time.Now(), startsAt, time.Minute)
				return nil
			},
		}
		provider := &mockProvider{
			captureOrderFunc: func(_ context.Context, orderID string) (*paymentprovider.CaptureOrderResponse, error) {
				assert.Equal(t, "ORDER-1", orderID)
				return &paymentprovider.CaptureOrderResponse{ID: "CAP-1", Status: paymentprovider.StatusCompleted}, nil
			},
		}

		svc := New(payments, &mockSubscriptions{}, accounts, provider, testLogger())
		p, err := svc.ConfirmPayment(context.Background(), "pay-1", "uid-1", models.RoleCoach)
		require.NoError(t, err)

		assert.Equal(t, models.PaymentSucceeded, p.Status)
		require.NotNil(t, planEndsAt, "pro plan must carry an end date")
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 365), *planEndsAt, time.Hour)
	})

	t.Run("foreign payment forbidden", func(t *testing.T) {
		payments := &mockPayments{
			getFunc: func(_ context.Context, _ string) (*models.Payment, error) {
				cp := pending
				return &cp, nil
			},
		}
		svc := New(payments, &mockSubscriptions{}, &mockAccounts{}, &mockProvider{}, testLogger())
		_, err := svc.ConfirmPayment(context.Background(), "pay-1", "uid-other", models.RoleCoach)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin may confirm any payment", func(t *testing.T) {
		current := pending
		payments := &mockPayments{
			getFunc: func(_ context.Context, _ string) (*models.Payment, error) {
				cp := current
				return &cp, nil
			},
			updateStatusFunc: func(_ context.Context, _, status, captureID string) error {
				current.Status = status
				current.CaptureID = captureID
				return nil
			},
		}
		provider := &mockProvider{
			captureOrderFunc: func(_ context.Context, _ string) (*paymentprovider.CaptureOrderResponse, error) {
				return &paymentprovider.CaptureOrderResponse{ID: "CAP-2", Status: paymentprovider.StatusCompleted}, nil
			},
		}
		svc := New(payments, &mockSubscriptions{}, &mockAccounts{}, provider, testLogger())
		_, err := svc.ConfirmPayment(context.Background(), "pay-1", "uid-admin", models.RoleAdmin)
		assert.NoError(t, err)
	})

	t.Run("incomplete capture marks failed", func(t *testing.T) {
		var marked string
		payments := &mockPayments{
			getFunc: func(_ context.Context, _ string) (*models.Payment, error) {
				cp := pending
				return &cp, nil
			},
			updateStatusFunc: func(_ context.Context, _, status, _ string) error {
				marked = status
				return nil
			},
		}
		provider := &mockProvider{
			captureOrderFunc: func(_ context.Context, _ string) (*paymentprovider.CaptureOrderResponse, error) {
				return &paymentprovider.CaptureOrderResponse{ID: "CAP-3", Status: "DECLINED"}, nil
			},
		}
		svc := New(payments, &mockSubscriptions{}, &mockAccounts{}, provider, testLogger())
		_, err := svc.ConfirmPayment(context.Background(), "pay-1", "uid-1", models.RoleCoach)
		assert.ErrorIs(t, err, ErrPaymentIncomplete)
		assert.Equal(t, models.PaymentFailed, marked)
	})

	t.Run("already succeeded is idempotent", func(t *testing.T) {
		done := pending
		done.Status = models.PaymentSucceeded
		payments := &mockPayments{
			getFunc: func(_ context.Context, _ string) (*models.Payment, error) {
				cp := done
				return &cp, nil
			},
		}
		provider := &mockProvider{
			captureOrderFunc: func(_ context.Context, _ string) (*paymentprovider.CaptureOrderResponse, error) {
				t.Fatal("succeeded payment must not be captured again")
				return nil, nil
			},
		}
		svc := New(payments, &mockSubscriptions{}, &mockAccounts{}, provider, testLogger())
		p, err := svc.ConfirmPayment(context.Background(), "pay-1", "uid-1", models.RoleCoach)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentSucceeded, p.Status)
	})

	t.Run("unknown payment", func(t *testing.T) {
		payments := &mockPayments{
			getFunc: func(_ context.Context, _ string) (*models.Payment, error) {
				return nil, repository.ErrNotFound
			},
		}
		svc := New(payments, &mockSubscriptions{}, &mockAccounts{}, &mockProvider{}, testLogger())
		_, err := svc.ConfirmPayment(context.Background(), "nope", "uid-1", models.RoleCoach)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestListPayments(t *testing.T) {
	own := []*models.Payment{{ID: "pay-1", AccountUID: "uid-1"}}
	all := []*models.Payment{{ID: "pay-1"}, {ID: "pay-2"}}
	payments := &mockPayments{
		listByAccFunc: func(_ context.Context, accountUID string) ([]*models.Payment, error) {
			assert.Equal(t, "uid-1", accountUID)
			return own, nil
		},
		listAllFunc: func(_ context.Context) ([]*models.Payment, error) {
			return all, nil
		},
	}
	svc := New(payments, &mockSubscriptions{}, &mockAccounts{}, &mockProvider{}, testLogger())

	got, err := svc.ListPayments(context.Background(), "uid-1", models.RoleCoach)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.ListPayments(context.Background(), "uid-admin", models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestHandleWebhookEvent(t *testing.T) {
	t.Run("capture completed reconciles pending payment", func(t *testing.T) {
		pending := models.Payment{ID: "pay-1", AccountUID: "uid-1", PlanName: plans.Premium,
			Status: models.PaymentPending, OrderID: "ORDER-9"}
		activated := false
		payments := &mockPayments{
			getByOrderFunc: func(_ context.Context, orderID string) (*models.Payment, error) {
				assert.Equal(t, "ORDER-9", orderID)
				cp := pending
				return &cp, nil
			},
			updateStatusFunc: func(_ context.Context, id, status, captureID string) error {
				assert.Equal(t, "pay-1", id)
				assert.Equal(t, models.PaymentSucceeded, status)
				assert.Equal(t, "CAP-9", captureID)
				return nil
			},
		}
		accounts := &mockAccounts{
			updatePlanFunc: func(_ context.Context, _, plan string, _ time.Time, _ *time.Time) error {
				activated = true
				assert.Equal(t, plans.Premium, plan)
				return nil
			},
		}
		svc := New(payments, &mockSubscriptions{}, accounts, &mockProvider{}, testLogger())
		err := svc.HandleWebhookEvent(context.Background(), "PAYMENT.CAPTURE.COMPLETED", "ORDER-9", "CAP-9")
		require.NoError(t, err)
		assert.True(t, activated)
	})

	t.Run("irrelevant events acknowledged", func(t *testing.T) {
		svc := New(&mockPayments{}, &mockSubscriptions{}, &mockAccounts{}, &mockProvider{}, testLogger())
		assert.NoError(t, svc.HandleWebhookEvent(context.Background(), "CHECKOUT.ORDER.APPROVED", "ORDER-1", ""))
	})

	t.Run("unknown order acknowledged", func(t *testing.T) {
		payments := &mockPayments{
			getByOrderFunc: func(_ context.Context, _ string) (*models.Payment, error) {
				return nil, repository.ErrNotFound
			},
		}
		svc := New(payments, &mockSubscriptions{}, &mockAccounts{}, &mockProvider{}, testLogger())
		assert.NoError(t, svc.HandleWebhookEvent(context.Background(), "PAYMENT.CAPTURE.COMPLETED", "ORDER-X", "CAP-X"))
	})
}
