// Package update содержит обработчик редактирования профиля текущего пользователя.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/dolgodolah/login/internal/http/middlewarectx"
	"github.com/dolgodolah/login/internal/http/response"
	"github.com/dolgodolah/login/internal/lib/sl"
	"github.com/dolgodolah/login/internal/storage"
)

// Request — входные данные для редактирования профиля.
// Пустой пароль означает «оставить текущий пароль без изменений».
type Request struct {
	Name     string `json:"name" validate:"required,max=50"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// Service описывает интерфейс сервиса профилей.
type Service interface {
	UpdateUserInfo(ctx context.Context, userUID, name, newRawPassword string) (string, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP
// @Summary Редактирование профиля текущего пользователя
// @Tags profile
// @Accept  json
// @Produce json
// @Security ApiKeyAuth
// @Param   request body Request true "Новое имя и (опционально) новый пароль"
// @Success 200 {object} response.Response "Профиль обновлён"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Пользователь не аутентифицирован"
// @Router /api/v1/me [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.update"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid, err := h.service.UpdateUserInfo(r.Context(), principal.UID, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("profile not found", slog.String("uid", principal.UID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to update profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update profile"))
		return
	}

	log.Info("profile updated", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":     uid,
		"message": "profile updated",
	}))
}
