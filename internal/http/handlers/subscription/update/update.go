// Package update handles admin-side subscription edits.
package update

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

	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/services/subscription"
)

// Request holds the fields an admin may overwrite.
type Request struct {
	Plan      string `json:"plan" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=active canceled expired trialing"`
	AutoRenew bool   `json:"auto_renew"`
}

// Service applies the edit.
type Service interface {
	Update(ctx context.Context, id string, p subscription.UpdateParams) (*models.Subscription, error)
}

// Handler processes update requests.
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
// @Summary Update a subscription
// @Description Overwrites the plan, status and renewal flag. Admin only.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription id"
// @Param request body Request true "New values"
// @Success 200 {object} response.Response "Updated subscription"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or unknown plan"
// @Failure 404 {object} response.ErrorResponse "Unknown subscription"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /subscriptions/{id} [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"

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

	sub, err := h.subscriptionService.Update(r.Context(), id, subscription.UpdateParams{
		Plan:      req.Plan,
		Status:    req.Status,
		AutoRenew: req.AutoRenew,
	})
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, subscription.ErrPlanUnknown):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
		default:
			log.Error("failed to update subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update subscription"))
		}
		return
	}

	log.Info("subscription updated", slog.String("subscription_id", sub.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{"subscription": sub}))
}
