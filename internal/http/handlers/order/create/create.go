// Package create содержит обработчик оформления заказа. Доступ только
// для пользователей с подтверждённым адресом.
package create

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/dolgodolah/login/internal/http/middlewarectx"
	"github.com/dolgodolah/login/internal/http/response"
	"github.com/dolgodolah/login/internal/lib/sl"
)

// Request — входные данные для оформления заказа.
type Request struct {
	Item     string `json:"item" validate:"required,max=100"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log:      log,
		validate: validator.New(),
	}
}

// ServeHTTP
// @Summary Оформление заказа
// @Tags order
// @Accept  json
// @Produce json
// @Security ApiKeyAuth
// @Param   request body Request true "Состав заказа"
// @Success 200 {object} response.Response "Заказ принят"
// @Failure 401 {object} response.Response "Пользователь не аутентифицирован"
// @Failure 403 {object} response.Response "Адрес не подтверждён"
// @Router /api/v1/order [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.create"

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

	orderID := uuid.NewString()
	log.Info("order accepted",
		slog.String("order_id", orderID),
		slog.String("uid", principal.UID),
		slog.String("item", req.Item),
		slog.Int("quantity", req.Quantity),
	)

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"order_id": orderID,
		"item":     req.Item,
		"quantity": req.Quantity,
	}))
}
