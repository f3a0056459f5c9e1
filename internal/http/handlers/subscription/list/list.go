// Package list handles subscription listings.
package list

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

// Service lists subscriptions scoped to the caller.
type Service interface {
	List(ctx context.Context, callerUID, callerRole string) ([]*models.Subscription, error)
}

// Handler processes listing requests.
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
// @Summary List subscriptions
// @Description Admins see every subscription, everyone else only their current one
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} response.Response "Subscriptions"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /subscriptions [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

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

	subs, err := h.subscriptionService.List(r.Context(), accountUID, role)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list subscriptions"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"subscriptions": subs}))
}
