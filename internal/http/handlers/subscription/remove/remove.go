// Package remove handles subscription deletion.
package remove

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
	"github.com/teamplaymate/coaching-backend/internal/services/subscription"
)

// Service deletes the subscription.
type Service interface {
	Delete(ctx context.Context, id, callerUID, callerRole string) error
}

// Handler processes deletion requests.
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
// @Summary Delete a subscription
// @Description Removes the subscription record entirely. Admins may delete any, others only their own.
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription id"
// @Success 200 {object} response.Response "Subscription deleted"
// @Failure 403 {object} response.ErrorResponse "Subscription belongs to another account"
// @Failure 404 {object} response.ErrorResponse "Unknown subscription"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /subscriptions/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"

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
	callerRole, _ := r.Context().Value(middlewarectx.Role).(string)

	if err := h.subscriptionService.Delete(r.Context(), id, callerUID, callerRole); err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		if errors.Is(err, subscription.ErrForbidden) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("you do not have permission to perform this action"))
			return
		}
		log.Error("failed to delete subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete subscription"))
		return
	}

	log.Info("subscription deleted", slog.String("subscription_id", id))
	render.JSON(w, r, response.OK("subscription deleted"))
}
