package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dolgodolah/login/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// Нарушение уникальности e-mail транслируется в ErrUserExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, name, password_hash, role, auth_key, auth_requested_time)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Name, user.PasswordHash, user.Role,
		user.AuthKey, user.AuthRequestedAt).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по его e-mail.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, name, password_hash, role, auth_key, auth_requested_time
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, name, password_hash, role, auth_key, auth_requested_time
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// UpdateAuthKey безусловно перезаписывает ключ подтверждения и время его выдачи.
// Все ранее выданные ключи при этом перестают действовать.
func (s *Storage) UpdateAuthKey(ctx context.Context, userUID, key string, requestedAt time.Time) error {
	const op = "storage.UpdateAuthKey"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET auth_key = $1,
			      auth_requested_time = $2
			  WHERE uid = $3`
	result, err := s.DB.ExecContext(ctx, query, key, requestedAt, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// MarkVerified переводит пользователя в роль member и очищает поля
// ключа подтверждения: использованный ключ больше не нужен.
func (s *Storage) MarkVerified(ctx context.Context, userUID string) error {
	const op = "storage.MarkVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = $1,
			      auth_key = NULL,
			      auth_requested_time = NULL
			  WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, models.RoleMember, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// UpdateUserInfo обновляет имя пользователя и, если передан новый хэш,
// его пароль. При passwordHash == nil сохранённый хэш остаётся прежним.
func (s *Storage) UpdateUserInfo(ctx context.Context, userUID, name string, passwordHash *string) (string, error) {
	const op = "storage.UpdateUserInfo"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var uid string
	query := `UPDATE users
			  SET name = $1,
			      password_hash = COALESCE($2, password_hash)
			  WHERE uid = $3
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query, name, passwordHash, userUID).Scan(&uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var authKey sql.NullString
	var authRequestedAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Name, &u.PasswordHash,
		&u.Role, &authKey, &authRequestedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if authKey.Valid {
		u.AuthKey = &authKey.String
	}
	if authRequestedAt.Valid {
		u.AuthRequestedAt = &authRequestedAt.Time
	}
	return u, nil
}
