// Package current handles the caller's current-subscription lookup.
package current

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/services/subscription"
)

// Service resolves the subscription governing an account.
type Service interface {
	EnsureForAccount(ctx context.Context, accountUID string) (*models.Subscription, error)
}

// Handler processes current-subscription requests.
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
// @Summary Get the current subscription
// @Description Returns the subscription governing the caller's plan, creating a free one on first access
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} response.Response "The subscription"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /subscriptions/current [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.current"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	accountUID, ok := r.Context().Value(middlewarectx.AccountUID).(string)
	if !ok || accountUID == "" {
		log.Error("account UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.subscriptionService.EnsureForAccount(r.Context(), accountUID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		log.Error("failed to load subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load subscription"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"subscription": sub}))
}
