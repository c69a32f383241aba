// Package expenseapproval предоставляет маршруты для основного приложения.
package expenseapproval

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mdc-cast/expense-approval/internal/events"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/auth/login"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/auth/register"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/auth/resetpassword"
	expenseapprove "github.com/mdc-cast/expense-approval/internal/http/handlers/expense/approve"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/create"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/list"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/own"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/ownapproved"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/pending"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/read"
	expensereject "github.com/mdc-cast/expense-approval/internal/http/handlers/expense/reject"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/remove"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/summary"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/expense/update"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/health"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/notification/dismiss"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/notification/dismissall"
	notificationlist "github.com/mdc-cast/expense-approval/internal/http/handlers/notification/list"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/notification/markallread"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/notification/markread"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/user/adminpassword"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/user/adminreset"
	userapprove "github.com/mdc-cast/expense-approval/internal/http/handlers/user/approve"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/user/changepassword"
	userlist "github.com/mdc-cast/expense-approval/internal/http/handlers/user/list"
	userreject "github.com/mdc-cast/expense-approval/internal/http/handlers/user/reject"
	userremove "github.com/mdc-cast/expense-approval/internal/http/handlers/user/remove"
	"github.com/mdc-cast/expense-approval/internal/http/handlers/user/updateprofile"
	"github.com/mdc-cast/expense-approval/internal/http/middlewarectx"
	"github.com/mdc-cast/expense-approval/internal/lib/jwt"
	authservice "github.com/mdc-cast/expense-approval/internal/services/auth"
	expenseservice "github.com/mdc-cast/expense-approval/internal/services/expense"
	notificationservice "github.com/mdc-cast/expense-approval/internal/services/notification"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	authService *authservice.AuthService, expenseService *expenseservice.ExpenseService,
	notificationService *notificationservice.NotificationService, dispatcher *events.Dispatcher) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService, dispatcher).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Post("/reset-password", resetpassword.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/expenses", create.New(logger, expenseService, dispatcher).ServeHTTP)
			r.Get("/expenses/list", list.New(logger, expenseService).ServeHTTP)
			r.Get("/expenses/own", own.New(logger, expenseService).ServeHTTP)
			r.Get("/expenses/own/approved", ownapproved.New(logger, expenseService).ServeHTTP)
			r.Get("/expenses/summary", summary.New(logger, expenseService).ServeHTTP)
			r.Get("/expenses/{uid}", read.New(logger, expenseService).ServeHTTP)
			r.Put("/expenses/{uid}", update.New(logger, expenseService).ServeHTTP)
			r.Delete("/expenses/{uid}", remove.New(logger, expenseService).ServeHTTP)

			r.Put("/profile", updateprofile.New(logger, authService).ServeHTTP)
			r.Put("/password", changepassword.New(logger, authService).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, notificationService).ServeHTTP)
			r.Put("/notifications/read-all", markallread.New(logger, notificationService).ServeHTTP)
			r.Put("/notifications/{uid}/read", markread.New(logger, notificationService).ServeHTTP)
			r.Delete("/notifications", dismissall.New(logger, notificationService).ServeHTTP)
			r.Delete("/notifications/{uid}", dismiss.New(logger, notificationService).ServeHTTP)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))

				r.Get("/users", userlist.New(logger, authService).ServeHTTP)
				r.Post("/users/{uid}/approve", userapprove.New(logger, authService, dispatcher).ServeHTTP)
				r.Post("/users/{uid}/reject", userreject.New(logger, authService, dispatcher).ServeHTTP)
				r.Delete("/users/{uid}", userremove.New(logger, authService).ServeHTTP)
				r.Put("/users/{uid}/password", adminpassword.New(logger, authService).ServeHTTP)
				r.Post("/users/{uid}/reset-password", adminreset.New(logger, authService).ServeHTTP)

				r.Get("/expenses/pending", pending.New(logger, expenseService).ServeHTTP)
				r.Post("/expenses/{uid}/approve", expenseapprove.New(logger, expenseService, dispatcher).ServeHTTP)
				r.Post("/expenses/{uid}/reject", expensereject.New(logger, expenseService, dispatcher).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
