// Package models содержит доменную модель пользователя сервиса,
// включающую данные учётной записи, хэш пароля, роль и состояние
// подтверждения e-mail. Структуры используются в бизнес‑логике
// и при работе с хранилищем.
package models

import "time"

// Роли пользователя. Новая учётная запись создаётся с ролью RoleGuest
// и переводится в RoleMember после подтверждения e-mail. Обратных
// переходов нет. RoleAdmin назначается вне сервиса.
const (
	RoleGuest  = "guest"
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User представляет учётную запись пользователя.
//
// AuthKey и AuthRequestedAt либо оба равны nil, либо оба заполнены:
// ключ подтверждения всегда хранится вместе со временем его выдачи.
type User struct {
	UID             string     // Уникальный идентификатор пользователя
	Email           string     // Электронная почта (уникальная, используется для входа)
	Name            string     // Отображаемое имя
	PasswordHash    string     // Хэш пароля пользователя
	Role            string     // Роль пользователя: guest, member или admin
	AuthKey         *string    // Действующий ключ подтверждения e-mail
	AuthRequestedAt *time.Time // Время выдачи ключа подтверждения
}

// Principal — аутентифицированный пользователь, полученный после входа.
type Principal struct {
	UID   string
	Email string
	Role  string
}

// CanOrder сообщает, доступно ли пользователю защищённое действие
// (оформление заказа). Доступ есть у member и admin, guest — только чтение.
func (p Principal) CanOrder() bool {
	return p.Role == RoleMember || p.Role == RoleAdmin
}

// VerificationMessage — задание на отправку письма с подтверждением,
// публикуется в очередь и потребляется почтовым воркером.
type VerificationMessage struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	ConfirmURL string `json:"confirm_url"`
}
