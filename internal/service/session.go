package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/pkg/log"
)

// sessionClaims — полезная нагрузка сессионного токена.
// Subject несёт UUID пользователя, Username дублируется отдельным
// полем, чтобы не ходить в БД на каждый запрос.
type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity — личность вызывающего, восстановленная из сессии.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// IssueSession выпускает подписанный HS256 сессионный токен
// со сроком жизни cfg.Auth.SessionTTL.
func (s *Service) IssueSession(ctx context.Context, user *models.User) (string, error) {
	const op = "service/session/IssueSession"

	lg := log.From(ctx).With("op", op, "user_id", user.ID.String())

	now := time.Now().UTC()
	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Auth.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Auth.SessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		lg.Error("failed to sign session token", "err", err)
		return "", fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return token, nil
}

// ValidateSession разбирает и проверяет сессионный токен.
//
// Поведение/ошибки:
//   - ErrTokenExpired — срок жизни вышел;
//   - ErrInvalidToken — неверная подпись/алгоритм/issuer/subject.
func (s *Service) ValidateSession(ctx context.Context, token string) (Identity, error) {
	const op = "service/session/ValidateSession"

	lg := log.From(ctx).With("op", op)

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.cfg.Auth.JWTSecret), nil
		},
		jwt.WithIssuer(s.cfg.Auth.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			lg.Warn("session token expired")
			return Identity{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		default:
			lg.Warn("invalid session token", "err", err)
			return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}
	}

	if !parsed.Valid {
		lg.Warn("session token not valid")
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		lg.Warn("malformed subject in session token")
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return Identity{UserID: userID, Username: claims.Username}, nil
}
