package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tadbeer/tadbeer-api/internal/application/access"
	"github.com/tadbeer/tadbeer-api/internal/application/admin"
	"github.com/tadbeer/tadbeer-api/internal/application/auth"
	"github.com/tadbeer/tadbeer-api/internal/application/ledger"
	"github.com/tadbeer/tadbeer-api/internal/application/notification"
	"github.com/tadbeer/tadbeer-api/internal/application/subscriber"
	"github.com/tadbeer/tadbeer-api/internal/application/subscription"
	"github.com/tadbeer/tadbeer-api/internal/infrastructure/postgres"
	httpRouter "github.com/tadbeer/tadbeer-api/internal/interfaces/http"
	"github.com/tadbeer/tadbeer-api/pkg/config"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	grantRepo := postgres.NewAccessGrantRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	subscriberRepo := postgres.NewSubscriberRepository(pool)
	statsRepo := postgres.NewStatisticsRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	adminLogRepo := postgres.NewAdminLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	gate := subscription.NewGate(companyRepo, userRepo, log)
	checker := access.NewChecker(userRepo, grantRepo)

	dispatcher := notification.NewDispatcher(notificationRepo, subscriberRepo, companyRepo, nil, log)
	notificationSvc := notification.NewService(notificationRepo)

	transactionUC := ledger.NewUseCase(txRunner, transactionRepo, statsRepo, gate, dispatcher, log)
	subscriberUC := subscriber.NewUseCase(txRunner, subscriberRepo, gate, dispatcher, log)
	adminUC := admin.NewUseCase(companyRepo, statsRepo, adminLogRepo, log)
	authUC := auth.NewUseCase(txRunner, companyRepo, userRepo, gate, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tadbeer API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		TransactionUC:  transactionUC,
		SubscriberUC:   subscriberUC,
		AdminUC:        adminUC,
		NotificationSv: notificationSvc,
		Users:          userRepo,
		Access:         checker,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Entregas de notificaciones en vuelo antes de soltar el pool.
	dispatcher.Wait()

	log.Info().Msg("aplicación detenida")
}
