// Package paymentconfirm handles capture of an approved checkout.
package paymentconfirm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/services/payment"
)

// Service captures the order and activates the plan.
type Service interface {
	ConfirmPayment(ctx context.Context, paymentID, callerUID, callerRole string) (*models.Payment, error)
}

// Handler processes confirmation requests.
type Handler struct {
	log            *slog.Logger
	paymentService Service
}

// New creates the confirmation handler.
func New(log *slog.Logger, paymentService Service) *Handler {
	return &Handler{
		log:            log,
		paymentService: paymentService,
	}
}

// ServeHTTP godoc
// @Summary Confirm an approved payment
// @Description Captures the gateway order; on completion the plan is activated
// @Tags Payments
// @Produce json
// @Param id path string true "Payment id"
// @Success 200 {object} response.Response "Payment captured"
// @Failure 400 {object} response.ErrorResponse "Capture did not complete"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Payment belongs to another account"
// @Failure 404 {object} response.ErrorResponse "Unknown payment"
// @Failure 500 {object} response.ErrorResponse "Gateway error"
// @Router /payments/{id}/confirm [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.confirm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing payment id"))
		return
	}

	accountUID, ok := r.Context().Value(middlewarectx.AccountUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if !ok || accountUID == "" {
		log.Error("account UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	p, err := h.paymentService.ConfirmPayment(r.Context(), paymentID, accountUID, role)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPaymentNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		case errors.Is(err, payment.ErrForbidden):
			log.Warn("confirmation of foreign payment denied",
				slog.String("payment_id", paymentID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("you do not have permission to perform this action"))
		case errors.Is(err, payment.ErrPaymentIncomplete):
			log.Warn("capture did not complete", slog.String("payment_id", paymentID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment was not completed"))
		case errors.Is(err, payment.ErrGateway):
			log.Error("gateway unavailable", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("payment gateway unavailable"))
		default:
			log.Error("failed to confirm payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to confirm payment"))
		}
		return
	}

	log.Info("payment confirmed", slog.String("payment_id", p.ID))
	render.JSON(w, r, response.OKMessageWithData("payment confirmed", map[string]any{"payment": p}))
}
