// Package confirm содержит обработчик подтверждения адреса электронной почты
// по ссылке из письма.
package confirm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/dolgodolah/login/internal/http/response"
	"github.com/dolgodolah/login/internal/lib/sl"
	accountservice "github.com/dolgodolah/login/internal/services/account"
	"github.com/dolgodolah/login/internal/storage"
)

// Service описывает интерфейс сервиса подтверждения.
type Service interface {
	ConfirmVerification(ctx context.Context, email, key string) error
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
// @Summary Подтверждение адреса электронной почты по ключу из письма
// @Tags verification
// @Produce json
// @Param   email query string true "E-mail пользователя"
// @Param   key   query string true "Ключ подтверждения из письма"
// @Success 200 {object} response.Response "Адрес подтверждён"
// @Failure 400 {object} response.Response "Ключ истёк или не совпадает"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Router /confirm [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.confirm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := r.URL.Query().Get("email")
	key := r.URL.Query().Get("key")
	if email == "" || key == "" {
		log.Error("missing email or key in query")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("email and key are required"))
		return
	}

	if err := h.service.ConfirmVerification(r.Context(), email, key); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			log.Warn("confirmation for unknown email", slog.String("email", email))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, accountservice.ErrKeyExpired):
			log.Warn("confirmation key expired", slog.String("email", email))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("confirmation key has expired, request a new one"))
		case errors.Is(err, accountservice.ErrKeyMismatch):
			log.Warn("confirmation key mismatch", slog.String("email", email))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("confirmation key is invalid"))
		default:
			log.Error("confirmation failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to confirm email"))
		}
		return
	}

	log.Info("email confirmed", slog.String("email", email))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "email confirmed, you can sign in now",
	}))
}
