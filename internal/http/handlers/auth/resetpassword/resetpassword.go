// Package resetpassword handles the final step of the reset flow: the
// ticket is consumed, the password replaced and a fresh session issued.
package resetpassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/teamplaymate/coaching-backend/internal/config"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/http/session"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/services/auth"
)

// Request carries the email, the reset code and the new password.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service consumes the ticket and issues the post-reset session.
type Service interface {
	ResetPassword(ctx context.Context, email, code, newPassword string) (*auth.Session, error)
}

// Handler processes reset requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	cfg         *config.Config
	validate    *validator.Validate
}

// New creates the reset handler.
func New(log *slog.Logger, authService Service, cfg *config.Config) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		cfg:         cfg,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Reset the password with a code
// @Description Consumes the reset ticket, replaces the password and logs the account in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Email, code and new password"
// @Success 200 {object} response.Response "Password replaced, session issued"
// @Failure 400 {object} response.ErrorResponse "Invalid or expired code"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /auth/reset-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

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

	sess, err := h.authService.ResetPassword(r.Context(), req.Email, req.Code, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrResetTicketInvalid) {
			log.Warn("invalid reset code", slog.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or expired reset code"))
			return
		}
		log.Error("failed to reset password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to reset password"))
		return
	}

	session.Write(w, sess.Token, h.cfg.IsProd())
	log.Info("password reset", slog.String("account_uid", sess.Account.UID))

	render.JSON(w, r, response.OKMessageWithData("password reset successfully",
		response.Auth(sess.Account, sess.Token)))
}
