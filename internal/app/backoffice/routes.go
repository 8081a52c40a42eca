// Package backoffice предоставляет маршруты основного приложения.
package backoffice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/apikeygen"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/menu"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/notifications"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/profile"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/publicapi"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/apikeys"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/auditlogs"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/invoices"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/menuadmin"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/notifybroadcast"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/plans"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/roles"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/settings"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/templates"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/users"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/handlers/superadmin/webhooks"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/jwt"
	"github.com/magabrotheeeer/crm-backoffice/internal/metrics"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Services объединяет все сервисы бэкофиса для регистрации маршрутов.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Roles         *services.RoleService
	Plans         *services.PlanService
	Menu          *services.MenuService
	Invoices      *services.InvoiceService
	APIKeys       *services.APIKeyService
	Webhooks      *services.WebhookService
	Notifications *services.NotificationService
	Templates     *services.EmailTemplateService
	Broadcast     *services.BroadcastService
	Settings      *services.SettingService
	Audit         *services.AuditService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services, jwtMaker jwt.Maker) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
	)

	// Открытые конечные точки
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Get("/verify/{token}", verify.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Post("/forgot-password", forgotpassword.New(logger, svc.Auth).ServeHTTP)
		r.Put("/reset-password/{token}", resetpassword.New(logger, svc.Auth).ServeHTTP)
	})

	// Группа с JWT аутентификацией
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/menu", menu.New(logger, svc.Menu).ServeHTTP)

			notifyHandler := notifications.New(logger, svc.Notifications)
			r.Get("/notifications", notifyHandler.List)
			r.Post("/notifications/{id}/read", notifyHandler.MarkRead)

			// Самообслуживание админа
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole("admin", logger))
				r.Get("/my-profile", profile.New(logger, svc.Users).ServeHTTP)
				r.Post("/api-keys/generate", apikeygen.New(logger, svc.APIKeys).ServeHTTP)
			})

			// Группа суперадмина
			r.Route("/superadmin", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole("superadmin", logger))

				usersHandler := users.New(logger, svc.Users)
				r.Get("/users", usersHandler.List)
				r.Get("/admins", usersHandler.ListAdmins)
				r.Patch("/users/{id}/role", usersHandler.UpdateRole)
				r.Patch("/users/{id}/plan", usersHandler.UpdatePlan)
				r.Delete("/users/{id}", usersHandler.Delete)

				rolesHandler := roles.New(logger, svc.Roles)
				r.Get("/roles", rolesHandler.List)
				r.Put("/roles/{id}/permissions", rolesHandler.UpdatePermissions)
				r.Get("/permissions", rolesHandler.ListPermissions)

				plansHandler := plans.New(logger, svc.Plans)
				r.Get("/plans", plansHandler.List)
				r.Post("/plans", plansHandler.Create)
				r.Put("/plans/{id}", plansHandler.Update)
				r.Delete("/plans/{id}", plansHandler.Delete)

				menuHandler := menuadmin.New(logger, svc.Menu)
				r.Get("/menu", menuHandler.List)
				r.Post("/menu", menuHandler.Create)
				r.Put("/menu/{id}", menuHandler.Update)
				r.Delete("/menu/{id}", menuHandler.Delete)

				invoicesHandler := invoices.New(logger, svc.Invoices)
				r.Get("/invoices", invoicesHandler.List)
				r.Post("/invoices", invoicesHandler.Create)
				r.Put("/invoices/{id}", invoicesHandler.Update)
				r.Delete("/invoices/{id}", invoicesHandler.Delete)
				r.Post("/invoices/{id}/payments", invoicesHandler.RecordPayment)
				r.Get("/invoices/{id}/payments", invoicesHandler.ListPayments)
				r.Delete("/payments/{id}", invoicesHandler.DeletePayment)

				templatesHandler := templates.New(logger, svc.Templates, svc.Broadcast)
				r.Get("/email-templates", templatesHandler.List)
				r.Post("/email-templates", templatesHandler.Create)
				r.Put("/email-templates/{id}", templatesHandler.Update)
				r.Delete("/email-templates/{id}", templatesHandler.Delete)
				r.Post("/broadcast-email", templatesHandler.Send)

				r.Post("/notifications", notifybroadcast.New(logger, svc.Notifications).ServeHTTP)

				settingsHandler := settings.New(logger, svc.Settings)
				r.Get("/settings", settingsHandler.List)
				r.Put("/settings", settingsHandler.Update)

				keysHandler := apikeys.New(logger, svc.APIKeys)
				r.Get("/apikeys", keysHandler.List)
				r.Post("/apikeys", keysHandler.Create)
				r.Post("/apikeys/{id}/revoke", keysHandler.Revoke)

				webhooksHandler := webhooks.New(logger, svc.Webhooks)
				r.Get("/webhooks", webhooksHandler.List)
				r.Post("/webhooks", webhooksHandler.Create)
				r.Delete("/webhooks/{id}", webhooksHandler.Delete)

				logsHandler := auditlogs.New(logger, svc.Audit)
				r.Get("/logs/activity", logsHandler.Activity)
				r.Get("/logs/login-attempts", logsHandler.LoginAttempts)
				r.Get("/logs/api-usage", logsHandler.APIUsage)
			})
		})

		// Публичный API по статическому ключу
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.APIKeyMiddleware(svc.APIKeys, logger))
			r.Get("/v1/contacts", publicapi.NewContactsHandler(logger, svc.Users).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
