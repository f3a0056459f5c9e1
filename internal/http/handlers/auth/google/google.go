// Package google handles the Google OAuth login flow: the redirect to
// the consent screen and the callback that exchanges the code for a
// local session.
package google

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/teamplaymate/coaching-backend/internal/config"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/http/session"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/oauth"
	"github.com/teamplaymate/coaching-backend/internal/services/auth"
)

const stateCookie = "oauth_state"

// Provider is the OAuth client surface the handlers need.
type Provider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*oauth.Profile, error)
}

// Service resolves a verified profile to a local session.
type Service interface {
	OAuthLogin(ctx context.Context, email, name, photo string) (*auth.Session, error)
}

// Handler processes both legs of the OAuth flow.
type Handler struct {
	log         *slog.Logger
	provider    Provider
	authService Service
	cfg         *config.Config
}

// New creates the Google OAuth handler.
func New(log *slog.Logger, provider Provider, authService Service, cfg *config.Config) *Handler {
	return &Handler{
		log:         log,
		provider:    provider,
		authService: authService,
		cfg:         cfg,
	}
}

// Redirect godoc
// @Summary Start Google OAuth login
// @Description Redirects the browser to the Google consent screen with a CSRF state cookie
// @Tags Auth
// @Success 307 "Redirect to Google"
// @Router /auth/google [get]
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.IsProd(),
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback godoc
// @Summary Complete Google OAuth login
// @Description Exchanges the authorization code for a profile and issues a local session
// @Tags Auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "CSRF state"
// @Success 200 {object} response.Response "Session issued"
// @Failure 400 {object} response.ErrorResponse "Missing or mismatched state"
// @Failure 401 {object} response.ErrorResponse "Code exchange failed"
// @Router /auth/google/callback [get]
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.google"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || state == "" || cookie.Value != state {
		log.Error("oauth state mismatch")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid oauth state"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		log.Error("missing authorization code")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing authorization code"))
		return
	}

	profile, err := h.provider.FetchProfile(r.Context(), code)
	if err != nil {
		log.Error("failed to exchange authorization code", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("failed to authenticate with Google"))
		return
	}

	sess, err := h.authService.OAuthLogin(r.Context(), profile.Email, profile.Name, profile.Photo)
	if err != nil {
		log.Error("oauth login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to log in"))
		return
	}

	session.Write(w, sess.Token, h.cfg.IsProd())
	log.Info("oauth login succeeded", slog.String("account_uid", sess.Account.UID))

	render.JSON(w, r, response.OKWithData(response.Auth(sess.Account, sess.Token)))
}
