// Package account предоставляет сборку и маршруты HTTP-сервиса учётных записей.
package account

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/dolgodolah/login/internal/http/handlers/auth/login"
	"github.com/dolgodolah/login/internal/http/handlers/auth/register"
	ordercreate "github.com/dolgodolah/login/internal/http/handlers/order/create"
	profileread "github.com/dolgodolah/login/internal/http/handlers/profile/read"
	profileupdate "github.com/dolgodolah/login/internal/http/handlers/profile/update"
	"github.com/dolgodolah/login/internal/http/handlers/verification/confirm"
	"github.com/dolgodolah/login/internal/http/handlers/verification/resend"
	"github.com/dolgodolah/login/internal/http/middlewarectx"
	accountservice "github.com/dolgodolah/login/internal/services/account"
	authservice "github.com/dolgodolah/login/internal/services/auth"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, accountService *accountservice.AccountService, authService *authservice.AuthService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Подтверждение по ссылке из письма, без аутентификации
	r.Get("/confirm", confirm.New(logger, accountService).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/register", register.New(logger, accountService).ServeHTTP)
			r.Post("/login", login.New(logger, authService).ServeHTTP)
			r.Post("/verification/resend", resend.New(logger, accountService).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Get("/me", profileread.New(logger, accountService).ServeHTTP)
			r.Put("/me", profileupdate.New(logger, accountService).ServeHTTP)

			// Только для подтверждённых пользователей
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireMember(logger))
				r.Post("/order", ordercreate.New(logger).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
