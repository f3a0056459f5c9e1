// Package login handles password authentication.
package login

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

// Request holds the login credentials.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service verifies credentials and issues a session.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

// Handler processes login requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	cfg         *config.Config
	validate    *validator.Validate
}

// New creates the login handler.
func New(log *slog.Logger, authService Service, cfg *config.Config) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		cfg:         cfg,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Log in with email and password
// @Description Verifies credentials and returns a session token, also set as the jwt cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Credentials"
// @Success 200 {object} response.Response "Session issued"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or validation error"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	sess, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Warn("invalid credentials", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid email or password"))
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to log in"))
		return
	}

	session.Write(w, sess.Token, h.cfg.IsProd())
	log.Info("login succeeded", slog.String("account_uid", sess.Account.UID))

	render.JSON(w, r, response.OKWithData(response.Auth(sess.Account, sess.Token)))
}
