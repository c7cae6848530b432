package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tadbeer/tadbeer-api/internal/application/admin"
	"github.com/tadbeer/tadbeer-api/internal/application/auth"
	"github.com/tadbeer/tadbeer-api/internal/application/ledger"
	"github.com/tadbeer/tadbeer-api/internal/application/notification"
	"github.com/tadbeer/tadbeer-api/internal/application/subscriber"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.UseCase
	TransactionUC  *ledger.UseCase
	SubscriberUC   *subscriber.UseCase
	AdminUC        *admin.UseCase
	NotificationSv *notification.Service
	Users          repository.UserRepository
	Access         accessChecker
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.RegisterCompany)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	transactionHandler := NewTransactionHandler(deps.TransactionUC)

	// Catálogo de tipos (público: es estático y lo consume el front sin sesión)
	api.Get("/transactions/types", transactionHandler.Types)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Todo lo que vive bajo /companies/:companyID exige acceso a esa empresa.
	company := protected.Group("/companies/:companyID", RequireCompanyAccess(deps.Access))

	// Transactions (protegido, por empresa)
	transactions := company.Group("/transactions")
	transactions.Post("/", transactionHandler.Create)
	transactions.Get("/", transactionHandler.List)
	// "/statistics" antes que "/:number" para que Fiber no lo trague como número.
	transactions.Get("/statistics", transactionHandler.Statistics)
	transactions.Get("/:number", transactionHandler.GetByNumber)
	transactions.Put("/:id", transactionHandler.Update)

	// Subscribers (protegido, por empresa)
	subscribers := company.Group("/subscribers")
	subscriberHandler := NewSubscriberHandler(deps.SubscriberUC)
	subscribers.Post("/", subscriberHandler.Create)
	subscribers.Get("/", subscriberHandler.List)
	subscribers.Get("/account/:account", subscriberHandler.GetByAccount)
	subscribers.Get("/:id", subscriberHandler.GetByID)
	subscribers.Put("/:id", subscriberHandler.Update)
	subscribers.Delete("/:id", subscriberHandler.Deactivate)

	// Users (protegido; crear usuarios es cosa de administradores)
	users := company.Group("/users")
	userHandler := NewUserHandler(deps.AuthUC, deps.Users)
	users.Post("/", RequireRole(entity.RoleAdmin, entity.RoleSystemAdmin), userHandler.Create)
	users.Get("/", userHandler.List)

	// Notifications (protegido, por empresa)
	notifications := company.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationSv)
	notifications.Put("/settings", notificationHandler.UpsertSetting)
	notifications.Get("/settings", notificationHandler.ListSettings)
	notifications.Get("/logs", notificationHandler.ListLogs)

	// Admin del sistema (protegido, solo system_admin)
	adminGroup := protected.Group("/admin", RequireRole(entity.RoleSystemAdmin))
	adminHandler := NewAdminHandler(deps.AdminUC)
	adminGroup.Get("/plans", adminHandler.Plans)
	adminGroup.Get("/companies", adminHandler.ListCompanies)
	adminGroup.Put("/companies/:id/subscription", adminHandler.UpdateSubscription)
	adminGroup.Post("/companies/:id/suspend", adminHandler.SuspendSubscription)
	adminGroup.Post("/companies/:id/reactivate", adminHandler.ReactivateSubscription)
	adminGroup.Get("/statistics", adminHandler.SystemStatistics)
	adminGroup.Get("/logs", adminHandler.ActivityLogs)
}
