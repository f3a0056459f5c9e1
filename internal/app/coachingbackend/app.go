// Package coachingbackend assembles the HTTP application: storage,
// cache, notification queue, services, routes and graceful shutdown.
package coachingbackend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/teamplaymate/coaching-backend/internal/cache"
	"github.com/teamplaymate/coaching-backend/internal/config"
	"github.com/teamplaymate/coaching-backend/internal/lib/jwt"
	"github.com/teamplaymate/coaching-backend/internal/lib/rabbitmq"
	"github.com/teamplaymate/coaching-backend/internal/migrations"
	"github.com/teamplaymate/coaching-backend/internal/oauth"
	"github.com/teamplaymate/coaching-backend/internal/paymentprovider"
	authservice "github.com/teamplaymate/coaching-backend/internal/services/auth"
	"github.com/teamplaymate/coaching-backend/internal/services/notifier"
	paymentservice "github.com/teamplaymate/coaching-backend/internal/services/payment"
	subscriptionservice "github.com/teamplaymate/coaching-backend/internal/services/subscription"
	"github.com/teamplaymate/coaching-backend/internal/storage/repository"
)

// App is the assembled HTTP application.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
}

// New wires every dependency and returns the ready-to-run app.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	amqpCh, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.NotificationQueues())
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	notifierService := notifier.New(amqpCh, logger)
	authService := authservice.New(db, jwtMaker, notifierService, cacheRedis, logger)

	providerClient := paymentprovider.NewClient(paymentprovider.Options{
		ClientID:  cfg.PayPalClientID,
		Secret:    cfg.PayPalSecret,
		APIURL:    cfg.PayPalAPIURL,
		BrandName: cfg.BrandName,
		ReturnURL: cfg.SuccessURL,
		CancelURL: cfg.CancelURL,
	})
	paymentService := paymentservice.New(db, db, db, providerClient, logger)
	subscriptionService := subscriptionservice.New(db, db, cacheRedis, logger)

	googleClient := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg,
		authService, paymentService, subscriptionService, googleClient)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
	}, nil
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		_ = a.amqpConn.Close()
		return err
	}
}
