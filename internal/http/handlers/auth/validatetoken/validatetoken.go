// Package validatetoken handles explicit token validation requests.
package validatetoken

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	libjwt "github.com/teamplaymate/coaching-backend/internal/lib/jwt"
	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
)

// Service validates a token and resolves its account.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Account, *libjwt.Claims, error)
}

// Handler processes validation requests.
type Handler struct {
	log         *slog.Logger
	authService Service
}

// New creates the token validation handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
	}
}

// ServeHTTP godoc
// @Summary Validate a session token
// @Description Checks signature, expiry, revocation and that the account still exists
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Token is valid"
// @Failure 401 {object} response.ErrorResponse "Token is invalid"
// @Router /auth/validate [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.validatetoken"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tokenStr := middlewarectx.TokenFromRequest(r)
	if tokenStr == "" {
		log.Error("missing token")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return
	}

	acc, claims, err := h.authService.ValidateToken(r.Context(), tokenStr)
	if err != nil {
		log.Warn("token validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": acc,
		"claims": map[string]any{
			"account_uid": claims.AccountUID,
			"role":        claims.Role,
			"plan":        claims.Plan,
			"expires_at":  claims.ExpiresAt,
		},
	}))
}
