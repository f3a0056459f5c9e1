// Package paymentlist handles payment history lookups.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
)

// Service lists payments scoped to the caller.
type Service interface {
	ListPayments(ctx context.Context, callerUID, callerRole string) ([]*models.Payment, error)
}

// Handler processes listing requests.
type Handler struct {
	log            *slog.Logger
	paymentService Service
}

// New creates the listing handler.
func New(log *slog.Logger, paymentService Service) *Handler {
	return &Handler{
		log:            log,
		paymentService: paymentService,
	}
}

// ServeHTTP godoc
// @Summary List payments
// @Description Admins see every payment, everyone else only their own
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Response "Payments, newest first"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /payments [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	accountUID, ok := r.Context().Value(middlewarectx.AccountUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if !ok || accountUID == "" {
		log.Error("account UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	payments, err := h.paymentService.ListPayments(r.Context(), accountUID, role)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list payments"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"payments": payments}))
}
