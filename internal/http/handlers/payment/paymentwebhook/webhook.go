// Package paymentwebhook handles asynchronous gateway notifications.
// The endpoint is unauthenticated but guarded by a shared secret; it
// always acknowledges recognized requests so the gateway stops
// retrying.
package paymentwebhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
)

// Event is the subset of the gateway notification the service needs.
type Event struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID                string `json:"id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// Service reconciles the event against stored payments.
type Service interface {
	HandleWebhookEvent(ctx context.Context, eventType, orderID, captureID string) error
}

// Handler processes gateway webhooks.
type Handler struct {
	log            *slog.Logger
	paymentService Service
	secret         string
}

// New creates the webhook handler with its shared secret.
func New(log *slog.Logger, paymentService Service, secret string) *Handler {
	return &Handler{
		log:            log,
		paymentService: paymentService,
		secret:         secret,
	}
}

// ServeHTTP godoc
// @Summary Receive a gateway webhook
// @Description Verifies the shared secret and reconciles capture notifications against stored payments
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared secret"
// @Success 200 {object} response.Response "Event acknowledged"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 403 {object} response.ErrorResponse "Bad secret"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	got := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		log.Warn("webhook with bad secret rejected")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var event Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Error("failed to decode webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	orderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
	captureID := event.Resource.ID
	if orderID == "" {
		// Order-level events carry the order id as the resource id.
		orderID = event.Resource.ID
		captureID = ""
	}

	if err := h.paymentService.HandleWebhookEvent(r.Context(), event.EventType, orderID, captureID); err != nil {
		log.Error("failed to process webhook event", sl.Err(err),
			slog.String("event_type", event.EventType))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process event"))
		return
	}

	log.Info("webhook event processed",
		slog.String("event_id", event.ID), slog.String("event_type", event.EventType))
	render.JSON(w, r, response.OK("event processed"))
}
