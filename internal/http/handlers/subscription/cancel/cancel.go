// Package cancel handles owner-side subscription cancellation.
package cancel

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
	"github.com/teamplaymate/coaching-backend/internal/services/subscription"
)

// Service cancels the subscription.
type Service interface {
	Cancel(ctx context.Context, id, callerUID string) (*models.Subscription, error)
}

// Handler processes cancellation requests.
type Handler struct {
	log                 *slog.Logger
	subscriptionService Service
}

// New creates the handler.
func New(log *slog.Logger, subscriptionService Service) *Handler {
	return &Handler{
		log:                 log,
		subscriptionService: subscriptionService,
	}
}

// ServeHTTP godoc
// @Summary Cancel the subscription
// @Description Stops renewal; the plan stays active until the paid period ends
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription id"
// @Success 200 {object} response.Response "Canceled subscription"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Subscription belongs to another account"
// @Failure 404 {object} response.ErrorResponse "Unknown subscription"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /subscriptions/{id}/cancel [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing subscription id"))
		return
	}

	callerUID, ok := r.Context().Value(middlewarectx.AccountUID).(string)
	if !ok || callerUID == "" {
		log.Error("account UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.subscriptionService.Cancel(r.Context(), id, callerUID)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, subscription.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("you do not have permission to perform this action"))
		default:
			log.Error("failed to cancel subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to cancel subscription"))
		}
		return
	}

	log.Info("subscription canceled", slog.String("subscription_id", sub.ID))
	render.JSON(w, r, response.OKMessageWithData("subscription canceled",
		map[string]any{"subscription": sub}))
}
