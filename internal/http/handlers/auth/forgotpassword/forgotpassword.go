// Package forgotpassword handles reset-code issuance.
package forgotpassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/services/auth"
)

// Request identifies the account to reset.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service issues the reset ticket and queues the code email.
type Service interface {
	ForgotPassword(ctx context.Context, email string) error
}

// Handler processes forgot-password requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New creates the forgot-password handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Request a password reset code
// @Description Issues a 6-digit reset code valid for ten minutes and emails it to the account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Account email"
// @Success 200 {object} response.Response "Code sent"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 404 {object} response.ErrorResponse "Unknown email"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /auth/forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

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

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			log.Warn("reset requested for unknown email", slog.String("email", req.Email))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no account with that email"))
			return
		}
		log.Error("failed to issue reset code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to issue reset code"))
		return
	}

	log.Info("reset code issued", slog.String("email", req.Email))
	render.JSON(w, r, response.OK("reset code sent"))
}
