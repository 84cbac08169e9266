package middlewarectx

import (
	"github.com/dolgodolah/login/internal/models"
)

// TokenValidator описывает интерфейс сервиса для валидации JWT токена.
type TokenValidator interface {
	ValidateToken(token string) (*models.Principal, error)
}
