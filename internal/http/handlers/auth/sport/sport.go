// Package sport handles the coach's sport preference selection.
package sport

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
	"github.com/teamplaymate/coaching-backend/internal/services/auth"
)

// Request carries the chosen sport.
type Request struct {
	Sport string `json:"sport" validate:"required,oneof=soccer futsal"`
}

// Service persists the preference.
type Service interface {
	UpdateSportPreference(ctx context.Context, uid, sport string) (*models.Account, error)
}

// Handler processes sport selection requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New creates the sport selection handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Select the preferred sport
// @Description Stores the coach's sport preference. Idempotent.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Sport"
// @Success 200 {object} response.Response "Preference stored"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /auth/sport [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.sport"

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

	acc, err := h.authService.UpdateSportPreference(r.Context(), accountUID, req.Sport)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to update sport preference", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update sport preference"))
		return
	}

	log.Info("sport preference updated", slog.String("sport", req.Sport))
	render.JSON(w, r, response.OKWithData(map[string]any{"user": acc}))
}
