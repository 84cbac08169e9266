// Package login содержит обработчик входа пользователя по e-mail и паролю.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/dolgodolah/login/internal/http/response"
	"github.com/dolgodolah/login/internal/lib/sl"
	"github.com/dolgodolah/login/internal/models"
	authservice "github.com/dolgodolah/login/internal/services/auth"
	"github.com/dolgodolah/login/internal/storage"
)

// Request — входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс сервиса аутентификации.
type Service interface {
	Login(ctx context.Context, email, rawPassword string) (*models.Principal, string, error)
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
// @Summary Вход пользователя, выдача JWT-токена
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body Request true "E-mail и пароль"
// @Success 200 {object} response.Response "Токен и данные пользователя"
// @Failure 401 {object} response.Response "Неверные учётные данные"
// @Failure 403 {object} response.Response "Адрес не подтверждён"
// @Router /api/v1/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	principal, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Несуществующий e-mail и неверный пароль не различаются в ответе.
		if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, authservice.ErrInvalidCredentials) {
			log.Warn("login rejected", slog.String("email", req.Email))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("incorrect email or password"))
			return
		}
		if errors.Is(err, authservice.ErrNotVerified) {
			log.Warn("login for unverified account", slog.String("email", req.Email))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("email address is not verified"))
			return
		}
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	log.Info("user logged in", slog.String("email", principal.Email), slog.String("uid", principal.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"uid":   principal.UID,
		"email": principal.Email,
		"role":  principal.Role,
	}))
}
