package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/dolgodolah/login/internal/http/response"
)

// RequireMember возвращает middleware, который пропускает к защищённому
// действию только подтверждённых пользователей (member и выше).
//
// Запрос без аутентификации получает 401, запрос от guest — 403: эти два
// случая различимы на границе.
func RequireMember(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireMember"

			log = log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				log.Error("principal not found in context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if !principal.CanOrder() {
				log.Error("access denied", slog.String("role", principal.Role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
