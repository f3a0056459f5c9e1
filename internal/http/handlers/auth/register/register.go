// Package register handles account registration, including the
// optional paid-plan checkout started in the same request.
package register

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
	"github.com/teamplaymate/coaching-backend/internal/services/payment"
)

// Request holds the registration input.
type Request struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Location        string `json:"location,omitempty"`
	Plan            string `json:"plan" validate:"required"`
}

// AuthService creates the account and issues the session.
type AuthService interface {
	Register(ctx context.Context, p auth.RegisterParams) (*auth.Session, error)
}

// PaymentService starts the checkout for the selected plan.
type PaymentService interface {
	CreatePayment(ctx context.Context, accountUID, planName string) (*payment.CheckoutResult, error)
}

// Handler processes registration requests.
type Handler struct {
	log            *slog.Logger
	authService    AuthService
	paymentService PaymentService
	cfg            *config.Config
	validate       *validator.Validate
}

// New creates the registration handler.
func New(log *slog.Logger, authService AuthService, paymentService PaymentService, cfg *config.Config) *Handler {
	return &Handler{
		log:            log,
		authService:    authService,
		paymentService: paymentService,
		cfg:            cfg,
		validate:       validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Register an account
// @Description Creates a coach account, issues a session token and, for a paid plan, starts a gateway checkout
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Registration data"
// @Success 201 {object} response.Response "Account created"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON, validation error or email already in use"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	sess, err := h.authService.Register(r.Context(), auth.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Location: req.Location,
		Plan:     req.Plan,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			log.Warn("email already in use", slog.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("email already in use"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register account"))
		return
	}

	checkout, err := h.paymentService.CreatePayment(r.Context(), sess.Account.UID, sess.Account.Plan)
	if err != nil {
		// The account exists and the session is valid; checkout can be
		// retried via the payments endpoint.
		log.Error("failed to start checkout after registration", sl.Err(err))
		checkout = nil
	}

	session.Write(w, sess.Token, h.cfg.IsProd())
	log.Info("account registered", slog.String("account_uid", sess.Account.UID))

	data := map[string]any{
		"user":    sess.Account,
		"session": response.Session{AccessToken: sess.Token},
	}
	if checkout != nil && checkout.ApprovalURL != "" {
		data["checkout"] = checkout
	}
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKMessageWithData("account created successfully", data))
}
