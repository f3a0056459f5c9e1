// Package verifyresetcode handles pre-flight checks of a reset code
// without consuming the ticket.
package verifyresetcode

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

// Request pairs the email with the code to check.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// Service checks a code against the pending ticket.
type Service interface {
	VerifyResetCode(ctx context.Context, email, code string) error
}

// Handler processes verification requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New creates the verification handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Verify a password reset code
// @Description Checks the code against the pending ticket without consuming it
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Email and code"
// @Success 200 {object} response.Response "Code is valid"
// @Failure 400 {object} response.ErrorResponse "Invalid or expired code"
// @Router /auth/verify-reset-code [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyresetcode"

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

	if err := h.authService.VerifyResetCode(r.Context(), req.Email, req.Code); err != nil {
		if errors.Is(err, auth.ErrResetTicketInvalid) {
			log.Warn("invalid reset code", slog.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or expired reset code"))
			return
		}
		log.Error("failed to verify reset code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to verify reset code"))
		return
	}

	render.JSON(w, r, response.OK("reset code is valid"))
}
