package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/pkg/log"
	"github.com/pribylovaa/go-forum/internal/storage"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
)

// RegisterInput — регистрация нового пользователя.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterUser — бизнес-операция регистрации.
//
// Валидация:
//   - Username: 3..32 символа из [a-zA-Z0-9_.-];
//   - Email: RFC 5322 (net/mail), иначе ErrInvalidEmail;
//   - Password: >= 8 символов, хотя бы одна буква и одна цифра,
//     иначе ErrWeakPassword.
//
// Поведение/ошибки:
//   - ErrUsernameTaken — имя или email уже заняты;
//   - ErrInternal — прочие ошибки стораджа/хеширования.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service/auth/RegisterUser"

	lg := log.From(ctx).With("op", op, "username", in.Username)

	in.Username = strings.TrimSpace(in.Username)
	if !validUsername(in.Username) {
		lg.Warn("invalid argument: bad username")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Email = strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(in.Email); err != nil {
		lg.Warn("invalid email")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if !strongPassword(in.Password) {
		lg.Warn("weak password")
		return nil, fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		lg.Error("failed to hash password", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			lg.Warn("username or email taken")
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		default:
			lg.Error("storage error on SaveUser", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return user, nil
}

// LoginUser — проверка пары логин/пароль.
//
// Поведение/ошибки:
//   - ErrInvalidCredentials — пользователя нет или пароль не совпал
//     (причина наружу не различается);
//   - ErrInternal — прочие ошибки стораджа.
func (s *Service) LoginUser(ctx context.Context, username, password string) (*models.User, error) {
	const op = "service/auth/LoginUser"

	lg := log.From(ctx).With("op", op, "username", username)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		lg.Warn("invalid argument: empty credentials")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		default:
			lg.Error("storage error on UserByUsername", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		lg.Warn("password mismatch")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return user, nil
}

// UserByID — пользователь по идентификатору.
//
// Поведение/ошибки:
//   - ErrNotFound — пользователь отсутствует;
//   - ErrInternal — прочие ошибки стораджа.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service/auth/UserByID"

	lg := log.From(ctx).With("op", op, "user_id", id.String())

	if id == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on UserByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return user, nil
}

// validUsername — 3..32 символа из [a-zA-Z0-9_.-].
func validUsername(s string) bool {
	if len(s) < minUsernameLen || len(s) > maxUsernameLen {
		return false
	}

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '.', r == '-':
		default:
			return false
		}
	}

	return true
}

// strongPassword — минимум 8 символов, хотя бы одна буква и одна цифра.
func strongPassword(s string) bool {
	if len(s) < minPasswordLen {
		return false
	}

	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasLetter && hasDigit
}
