package expenseapproval

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/mdc-cast/expense-approval/internal/cache"
	"github.com/mdc-cast/expense-approval/internal/config"
	"github.com/mdc-cast/expense-approval/internal/events"
	"github.com/mdc-cast/expense-approval/internal/lib/jwt"
	"github.com/mdc-cast/expense-approval/internal/migrations"
	"github.com/mdc-cast/expense-approval/internal/rabbitmq"
	authservice "github.com/mdc-cast/expense-approval/internal/services/auth"
	expenseservice "github.com/mdc-cast/expense-approval/internal/services/expense"
	notificationservice "github.com/mdc-cast/expense-approval/internal/services/notification"
	"github.com/mdc-cast/expense-approval/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

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

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker, logger)
	expenseService := expenseservice.NewExpenseService(db, db, cacheRedis, logger)
	notificationService := notificationservice.NewNotificationService(db, logger)

	// Пустой rabbit_url отключает брокер: уведомления остаются в ленте,
	// письма не отправляются.
	var (
		conn      *amqp.Connection
		ch        *amqp.Channel
		brokerPub events.BrokerPublisher
	)
	if cfg.RabbitURL != "" {
		conn, err = rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitDelay)
		if err != nil {
			return nil, err
		}
		ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			conn.Close()
			return nil, err
		}
		brokerPub = rabbitmq.NewPublisher(ch)
	}

	dispatcher := events.New(notificationService, brokerPub, logger)

	if err = authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, authService, expenseService, notificationService, dispatcher)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  *cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
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
		if a.ch != nil {
			_ = a.ch.Close()
		}
		if a.conn != nil {
			_ = a.conn.Close()
		}
		a.db.DB.Close()
		return err
	}
}
