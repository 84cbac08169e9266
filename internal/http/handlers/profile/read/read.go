// Package read содержит обработчик чтения профиля текущего пользователя.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/dolgodolah/login/internal/http/middlewarectx"
	"github.com/dolgodolah/login/internal/http/response"
	"github.com/dolgodolah/login/internal/lib/sl"
	"github.com/dolgodolah/login/internal/models"
	"github.com/dolgodolah/login/internal/storage"
)

// Service описывает интерфейс сервиса профилей.
type Service interface {
	GetProfile(ctx context.Context, userUID string) (*models.User, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP
// @Summary Профиль текущего пользователя
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} response.Response "Профиль пользователя"
// @Failure 401 {object} response.Response "Пользователь не аутентифицирован"
// @Router /api/v1/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		log.Error("principal missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.service.GetProfile(r.Context(), principal.UID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("profile not found", slog.String("uid", principal.UID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to load profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load profile"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":   user.UID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	}))
}
