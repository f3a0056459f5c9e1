// Package me handles the current-account lookup.
package me

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
	"github.com/teamplaymate/coaching-backend/internal/services/auth"
)

// Service loads the account behind the verified identity.
type Service interface {
	GetAccount(ctx context.Context, uid string) (*models.Account, error)
}

// Handler processes current-account requests.
type Handler struct {
	log         *slog.Logger
	authService Service
}

// New creates the handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
	}
}

// ServeHTTP godoc
// @Summary Get the authenticated account
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "The account"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /auth/me [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

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

	acc, err := h.authService.GetAccount(r.Context(), accountUID)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to load account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load account"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"user": acc}))
}
