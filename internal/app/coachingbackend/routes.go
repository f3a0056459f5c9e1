package coachingbackend

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/teamplaymate/coaching-backend/internal/config"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/forgotpassword"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/google"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/guest"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/login"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/logout"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/me"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/refreshtoken"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/register"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/resetpassword"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/sport"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/validatetoken"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/auth/verifyresetcode"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/health"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/payment/paymentconfirm"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/payment/paymentcreate"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/payment/paymentlist"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/payment/paymentwebhook"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/subscription/cancel"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/subscription/create"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/subscription/current"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/subscription/list"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/subscription/remove"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/subscription/update"
	"github.com/teamplaymate/coaching-backend/internal/http/handlers/subscription/upgrade"
	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/oauth"
	authservice "github.com/teamplaymate/coaching-backend/internal/services/auth"
	paymentservice "github.com/teamplaymate/coaching-backend/internal/services/payment"
	subscriptionservice "github.com/teamplaymate/coaching-backend/internal/services/subscription"
)

// RegisterRoutes mounts every application route on the router.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.AuthService,
	paymentService *paymentservice.PaymentService,
	subscriptionService *subscriptionservice.SubscriptionService,
	googleClient *oauth.GoogleClient,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	googleHandler := google.New(logger, googleClient, authService, cfg)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/auth/register", register.New(logger, authService, paymentService, cfg).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService, cfg).ServeHTTP)
		r.Post("/auth/guest", guest.New(logger, authService, cfg).ServeHTTP)
		r.Get("/auth/google", googleHandler.Redirect)
		r.Get("/auth/google/callback", googleHandler.Callback)
		r.Get("/auth/validate", validatetoken.New(logger, authService).ServeHTTP)
		r.Post("/auth/refresh", refreshtoken.New(logger, authService, cfg).ServeHTTP)
		r.Post("/auth/forgot-password", forgotpassword.New(logger, authService).ServeHTTP)
		r.Post("/auth/verify-reset-code", verifyresetcode.New(logger, authService).ServeHTTP)
		r.Post("/auth/reset-password", resetpassword.New(logger, authService, cfg).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger, authService, cfg).ServeHTTP)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Protect(authService, logger))
			r.Use(middlewarectx.RateLimit(logger, cfg.RequestsPerSecond, cfg.Burst))

			r.Get("/auth/me", me.New(logger, authService).ServeHTTP)
			r.Post("/auth/sport", sport.New(logger, authService).ServeHTTP)

			r.Post("/payments", paymentcreate.New(logger, paymentService).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, paymentService).ServeHTTP)
			r.Post("/payments/{id}/confirm", paymentconfirm.New(logger, paymentService).ServeHTTP)

			r.Get("/subscriptions", list.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/current", current.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/{id}/upgrade", upgrade.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/{id}/cancel", cancel.New(logger, subscriptionService).ServeHTTP)

			// Guests cannot manage subscription records directly
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RestrictTo(logger, models.RoleAdmin, models.RoleCoach))
				r.Post("/subscriptions", create.New(logger, subscriptionService).ServeHTTP)
				r.Delete("/subscriptions/{id}", remove.New(logger, subscriptionService).ServeHTTP)
			})

			// Admin-only management
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RestrictTo(logger, models.RoleAdmin))
				r.Put("/subscriptions/{id}", update.New(logger, subscriptionService).ServeHTTP)
			})
		})

		// Webhook endpoint, guarded by the shared secret instead of a session
		r.Post("/payments/webhook", paymentwebhook.New(logger, paymentService, cfg.WebhookSecret).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
