// Package services содержит бизнес-логику учётных записей: регистрацию,
// выдачу и проверку ключей подтверждения e-mail и редактирование профиля.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/dolgodolah/login/internal/lib/authkey"
	"github.com/dolgodolah/login/internal/lib/password"
	"github.com/dolgodolah/login/internal/lib/sl"
	"github.com/dolgodolah/login/internal/models"
	"github.com/dolgodolah/login/internal/storage"
)

// Ошибки бизнес-уровня. Возвращаются обработчикам, которые переводят их
// в пользовательские сообщения.
var (
	// ErrEmailTaken — на этот e-mail уже зарегистрирована учётная запись.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrKeyExpired — срок действия ключа подтверждения истёк.
	ErrKeyExpired = errors.New("verification key expired")
	// ErrKeyMismatch — ключ не совпадает с действующим.
	ErrKeyMismatch = errors.New("verification key mismatch")
	// ErrAlreadyVerified — учётная запись уже подтверждена, новый ключ не нужен.
	ErrAlreadyVerified = errors.New("email is already verified")
	// ErrMailNotSent — письмо не удалось поставить в очередь. Ключ при этом
	// уже сохранён и остаётся действительным, отправку можно повторить.
	ErrMailNotSent = errors.New("verification mail was not sent")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateAuthKey(ctx context.Context, userUID, key string, requestedAt time.Time) error
	MarkVerified(ctx context.Context, userUID string) error
	UpdateUserInfo(ctx context.Context, userUID, name string, passwordHash *string) (string, error)
}

// MailPublisher ставит письмо-подтверждение в очередь на отправку.
type MailPublisher interface {
	PublishVerificationMail(ctx context.Context, msg models.VerificationMessage) error
}

// ProfileCache описывает кэш профилей пользователей.
type ProfileCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

const profileCacheTTL = 5 * time.Minute

// AccountService отвечает за регистрацию, подтверждение e-mail
// и редактирование профиля.
type AccountService struct {
	users          UserRepository
	mail           MailPublisher
	cache          ProfileCache
	log            *slog.Logger
	keyTTL         time.Duration
	confirmBaseURL string
}

// NewAccountService создает новый экземпляр AccountService.
func NewAccountService(users UserRepository, mail MailPublisher, cache ProfileCache,
	log *slog.Logger, keyTTL time.Duration, confirmBaseURL string) *AccountService {
	return &AccountService{
		users:          users,
		mail:           mail,
		cache:          cache,
		log:            log,
		keyTTL:         keyTTL,
		confirmBaseURL: confirmBaseURL,
	}
}

// Register создает нового пользователя с ролью guest, сразу выдает ключ
// подтверждения и ставит письмо в очередь. Возвращает UID пользователя.
//
// Предварительная проверка e-mail дает понятную ошибку раньше, но от гонки
// двух одновременных регистраций защищает уникальный индекс в базе:
// нарушение уникальности тоже приходит сюда как ErrEmailTaken.
func (s *AccountService) Register(ctx context.Context, email, rawPassword, name string) (string, error) {
	const op = "account.Register"

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         models.RoleGuest, // дефолтная роль до подтверждения e-mail
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// Почта отправляется по принципу best-effort: учётная запись и ключ
	// уже сохранены, неотправленное письмо можно запросить повторно.
	if _, err := s.issueKey(ctx, uid, email, name); err != nil {
		if errors.Is(err, ErrMailNotSent) {
			s.log.Error("verification mail was not enqueued", slog.String("email", email), sl.Err(err))
			return uid, nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// IssueVerificationKey выдает новый ключ подтверждения для пользователя
// с указанным e-mail и ставит письмо в очередь. Прежний ключ при этом
// перестает действовать. Для уже подтверждённой учётной записи
// возвращает ErrAlreadyVerified.
func (s *AccountService) IssueVerificationKey(ctx context.Context, email string) (string, error) {
	const op = "account.IssueVerificationKey"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if user.Role != models.RoleGuest {
		return "", fmt.Errorf("%s: %w", op, ErrAlreadyVerified)
	}

	key, err := s.issueKey(ctx, user.UID, user.Email, user.Name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key, nil
}

func (s *AccountService) issueKey(ctx context.Context, uid, email, name string) (string, error) {
	const op = "account.issueKey"

	key, err := authkey.New()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateAuthKey(ctx, uid, key, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	msg := models.VerificationMessage{
		Email:      email,
		Name:       name,
		ConfirmURL: s.confirmURL(email, key),
	}
	if err := s.mail.PublishVerificationMail(ctx, msg); err != nil {
		s.log.Error("failed to publish verification mail", slog.String("email", email), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrMailNotSent)
	}
	return key, nil
}

func (s *AccountService) confirmURL(email, key string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("key", key)
	return s.confirmBaseURL + "/confirm?" + q.Encode()
}

// ConfirmVerification проверяет ключ подтверждения и переводит пользователя
// в роль member. Порядок проверок повторяет порядок обработки колбэка:
// сначала срок действия, затем совпадение ключа.
//
// Повторное подтверждение уже подтверждённой учётной записи — успешный no-op.
func (s *AccountService) ConfirmVerification(ctx context.Context, email, submittedKey string) error {
	const op = "account.ConfirmVerification"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.Role != models.RoleGuest {
		return nil
	}
	if user.AuthKey == nil || user.AuthRequestedAt == nil {
		return fmt.Errorf("%s: %w", op, ErrKeyMismatch)
	}
	if time.Since(*user.AuthRequestedAt) > s.keyTTL {
		return fmt.Errorf("%s: %w", op, ErrKeyExpired)
	}
	if *user.AuthKey != submittedKey {
		return fmt.Errorf("%s: %w", op, ErrKeyMismatch)
	}

	if err := s.users.MarkVerified(ctx, user.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(profileCacheKey(user.UID)); err != nil {
		s.log.Error("failed to invalidate profile cache", slog.String("uid", user.UID), sl.Err(err))
	}
	return nil
}

// GetProfile возвращает профиль пользователя, используя кэш.
func (s *AccountService) GetProfile(ctx context.Context, userUID string) (*models.User, error) {
	const op = "account.GetProfile"

	var cached models.User
	found, err := s.cache.Get(profileCacheKey(userUID), &cached)
	if err != nil {
		s.log.Error("failed to read profile cache", slog.String("uid", userUID), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(profileCacheKey(userUID), user, profileCacheTTL); err != nil {
		s.log.Error("failed to write profile cache", slog.String("uid", userUID), sl.Err(err))
	}
	return user, nil
}

// UpdateUserInfo обновляет имя пользователя и, если передан непустой новый
// пароль, его хэш. Пустой пароль оставляет сохранённый хэш без изменений.
// Возвращает UID обновлённого пользователя.
func (s *AccountService) UpdateUserInfo(ctx context.Context, userUID, name, newRawPassword string) (string, error) {
	const op = "account.UpdateUserInfo"

	var passwordHash *string
	if newRawPassword != "" {
		hashed, err := password.GetHash(newRawPassword)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		passwordHash = &hashed
	}

	uid, err := s.users.UpdateUserInfo(ctx, userUID, name, passwordHash)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(profileCacheKey(uid)); err != nil {
		s.log.Error("failed to invalidate profile cache", slog.String("uid", uid), sl.Err(err))
	}
	return uid, nil
}

func profileCacheKey(uid string) string {
	return "profile:" + uid
}
