// Package create handles direct subscription creation.
package create

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
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/services/subscription"
)

// Request describes the subscription to create.
type Request struct {
	AccountUID string `json:"account_uid" validate:"required,uuid"`
	Plan       string `json:"plan" validate:"required"`
	AutoRenew  bool   `json:"auto_renew"`
}

// Service records the subscription.
type Service interface {
	Create(ctx context.Context, callerUID, callerRole string, p subscription.CreateParams) (*models.Subscription, error)
}

// Handler processes creation requests.
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
// @Summary Create a subscription for an account
// @Description Records a subscription and moves the account onto the plan. Admins may target any account, others only their own.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body Request true "Subscription data"
// @Success 201 {object} response.Response "Subscription created"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or unknown plan"
// @Failure 403 {object} response.ErrorResponse "Target account belongs to someone else"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /subscriptions [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"

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

	callerUID, _ := r.Context().Value(middlewarectx.AccountUID).(string)
	callerRole, _ := r.Context().Value(middlewarectx.Role).(string)

	sub, err := h.subscriptionService.Create(r.Context(), callerUID, callerRole, subscription.CreateParams{
		AccountUID: req.AccountUID,
		Plan:       req.Plan,
		AutoRenew:  req.AutoRenew,
	})
	if err != nil {
		if errors.Is(err, subscription.ErrPlanUnknown) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
			return
		}
		if errors.Is(err, subscription.ErrForbidden) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("you do not have permission to perform this action"))
			return
		}
		log.Error("failed to create subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create subscription"))
		return
	}

	log.Info("subscription created", slog.String("subscription_id", sub.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{"subscription": sub}))
}
