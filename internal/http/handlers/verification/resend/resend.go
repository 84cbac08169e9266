// Package resend содержит обработчик повторной отправки письма
// с ключом подтверждения.
package resend

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
	accountservice "github.com/dolgodolah/login/internal/services/account"
	"github.com/dolgodolah/login/internal/storage"
)

// Request — входные данные для повторной отправки письма.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс сервиса выдачи ключа подтверждения.
type Service interface {
	IssueVerificationKey(ctx context.Context, email string) (string, error)
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
// @Summary Повторная отправка письма с ключом подтверждения
// @Tags verification
// @Accept  json
// @Produce json
// @Param   request body Request true "E-mail пользователя"
// @Success 200 {object} response.Response "Письмо поставлено в очередь"
// @Failure 400 {object} response.Response "Адрес уже подтверждён"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Router /api/v1/verification/resend [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.resend"

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

	if _, err := h.service.IssueVerificationKey(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			log.Warn("resend for unknown email", slog.String("email", req.Email))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, accountservice.ErrAlreadyVerified):
			log.Warn("resend for verified account", slog.String("email", req.Email))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("email address is already verified"))
		case errors.Is(err, accountservice.ErrMailNotSent):
			log.Error("failed to queue confirmation email", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to send confirmation email"))
		default:
			log.Error("resend failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to send confirmation email"))
		}
		return
	}

	log.Info("confirmation email queued", slog.String("email", req.Email))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "confirmation email is on the way",
	}))
}
