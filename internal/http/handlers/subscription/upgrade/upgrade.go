// Package upgrade handles owner-side plan upgrades.
package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/services/subscription"
)

// Request selects the new plan.
type Request struct {
	Plan string `json:"plan" validate:"required"`
}

// Service applies the upgrade.
type Service interface {
	Upgrade(ctx context.Context, id, callerUID, planName string) (*models.Subscription, error)
}

// Handler processes upgrade requests.
type Handler struct {
	log                 *slog.Logger
	subscriptionService Service
	validate            *validator.Validate
}

// New creates the handler.
func New(log *slog.Logger, subscriptionService Service) *Handler {
	return &Handler{
		log:                 log,
		subscriptionService: subscriptionService,
		validate:            validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Upgrade the subscription plan
// @Description Moves the caller's subscription to the new plan with a fresh validity window
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription id"
// @Param request body Request true "New plan"
// @Success 200 {object} response.Response "Upgraded subscription"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or unknown plan"
// @Failure 403 {object} response.ErrorResponse "Subscription belongs to another account"
// @Failure 404 {object} response.ErrorResponse "Unknown subscription"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /subscriptions/{id}/upgrade [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.upgrade"

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

	callerUID, ok := r.Context().Value(middlewarectx.AccountUID).(string)
	if !ok || callerUID == "" {
		log.Error("account UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.subscriptionService.Upgrade(r.Context(), id, callerUID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, subscription.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("you do not have permission to perform this action"))
		case errors.Is(err, subscription.ErrPlanUnknown):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
		default:
			log.Error("failed to upgrade subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to upgrade subscription"))
		}
		return
	}

	log.Info("subscription upgraded",
		slog.String("subscription_id", sub.ID), slog.String("plan", sub.Plan))
	render.JSON(w, r, response.OKWithData(map[string]any{"subscription": sub}))
}
