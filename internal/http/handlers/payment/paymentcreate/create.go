// Package paymentcreate handles checkout creation for a plan.
package paymentcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/services/payment"
)

// Request selects the plan to pay for.
type Request struct {
	Plan string `json:"plan" validate:"required"`
}

// Service starts the checkout.
type Service interface {
	CreatePayment(ctx context.Context, accountUID, planName string) (*payment.CheckoutResult, error)
}

// Handler processes checkout creation requests.
type Handler struct {
	log            *slog.Logger
	paymentService Service
	validate       *validator.Validate
}

// New creates the checkout handler.
func New(log *slog.Logger, paymentService Service) *Handler {
	return &Handler{
		log:            log,
		paymentService: paymentService,
		validate:       validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Start a checkout for a plan
// @Description A free plan activates immediately; a paid plan returns the gateway approval URL
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body Request true "Plan to purchase"
// @Success 200 {object} response.Response "Checkout started"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or unknown plan"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 500 {object} response.ErrorResponse "Gateway error"
// @Router /payments [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	accountUID, ok := r.Context().Value(middlewarectx.AccountUID).(string)
	if !ok || accountUID == "" {
		log.Error("account UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.paymentService.CreatePayment(r.Context(), accountUID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPlanUnknown):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
		case errors.Is(err, payment.ErrGateway):
			log.Error("gateway unavailable", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("payment gateway unavailable"))
		default:
			log.Error("failed to create payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to create payment"))
		}
		return
	}

	log.Info("checkout started",
		slog.String("payment_id", result.PaymentID), slog.String("status", result.Status))
	render.JSON(w, r, response.OKWithData(result))
}
