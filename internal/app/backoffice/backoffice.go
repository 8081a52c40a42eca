// Package backoffice собирает и запускает основной HTTP-сервис бэкофиса.
package backoffice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/crm-backoffice/internal/cache"
	"github.com/magabrotheeeer/crm-backoffice/internal/config"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/jwt"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/crm-backoffice/internal/metrics"
	"github.com/magabrotheeeer/crm-backoffice/internal/migrations"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// App агрегирует зависимости HTTP-сервиса бэкофиса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// emailPublisher публикует почтовые задания в общий exchange.
type emailPublisher struct {
	ch *amqp.Channel
}

func (p *emailPublisher) Publish(routingKey string, message any) error {
	if err := rabbitmq.PublishMessage(p.ch, rabbitmq.Exchange, routingKey, message); err != nil {
		return err
	}
	metrics.ObserveEmailJob(routingKey)
	return nil
}

// New инициализирует хранилище, кеш, брокер и все сервисы бэкофиса.
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

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := &emailPublisher{ch: ch}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	svc := &Services{
		Auth: services.NewAuthService(db, db, db, db, jwtMaker, publisher,
			logger, cfg.BaseURL, cfg.FrontendURL),
		Users:         services.NewUserService(db, db, logger),
		Roles:         services.NewRoleService(db, db, logger),
		Plans:         services.NewPlanService(db, db, logger),
		Menu:          services.NewMenuService(db, cacheRedis, logger),
		Invoices:      services.NewInvoiceService(db, logger),
		APIKeys:       services.NewAPIKeyService(db, db, logger),
		Webhooks:      services.NewWebhookService(db, logger),
		Notifications: services.NewNotificationService(db, db, logger),
		Templates:     services.NewEmailTemplateService(db, logger),
		Broadcast:     services.NewBroadcastService(db, db, publisher, logger),
		Settings:      services.NewSettingService(db, logger),
		Audit:         services.NewAuditService(db, logger),
	}

	// Роли admin и user должны существовать до первого входа.
	if err = svc.Roles.SeedDefaults(ctx); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, jwtMaker)

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
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}
