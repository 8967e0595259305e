package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-forum/internal/pkg/log"
	"github.com/pribylovaa/go-forum/internal/storage"
)

// AvatarPresign выдаёт presigned PUT URL для загрузки аватара.
//
// Поведение/ошибки:
//   - ErrAvatarsDisabled — объектное хранилище не сконфигурировано;
//   - ErrInvalidArgument — неподдерживаемый тип или размер файла;
//   - ErrInternal — прочие ошибки хранилища.
func (s *Service) AvatarPresign(ctx context.Context, userID uuid.UUID, contentType string, size int64) (*storage.UploadInfo, error) {
	const op = "service/avatars/AvatarPresign"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if s.avatars == nil {
		lg.Warn("avatar storage disabled")
		return nil, fmt.Errorf("%s: %w", op, ErrAvatarsDisabled)
	}

	if userID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	info, err := s.avatars.AvatarUploadURL(ctx, userID, strings.TrimSpace(contentType), size)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidArgument):
			lg.Warn("invalid avatar upload params", "content_type", contentType, "size", size)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("avatar storage error on AvatarUploadURL", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return info, nil
}

// AvatarConfirm проверяет фактически загруженный объект и фиксирует
// публичный URL аватара в профиле пользователя.
//
// Поведение/ошибки:
//   - ErrAvatarsDisabled — объектное хранилище не сконфигурировано;
//   - ErrNotFound — объект не загружен или пользователь исчез;
//   - ErrInvalidArgument — ключ чужой/битый либо объект не прошёл проверки;
//   - ErrInternal — прочие ошибки.
func (s *Service) AvatarConfirm(ctx context.Context, userID uuid.UUID, avatarKey string) (string, error) {
	const op = "service/avatars/AvatarConfirm"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if s.avatars == nil {
		lg.Warn("avatar storage disabled")
		return "", fmt.Errorf("%s: %w", op, ErrAvatarsDisabled)
	}

	if userID == uuid.Nil || strings.TrimSpace(avatarKey) == "" {
		lg.Warn("invalid argument: empty user_id or avatar_key")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	url, err := s.avatars.CheckAvatarUpload(ctx, userID, avatarKey)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFoundAvatar):
			lg.Warn("avatar object not found")
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrInvalidArgument):
			lg.Warn("avatar object failed checks")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("avatar storage error on CheckAvatarUpload", "err", err)
			return "", fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if err := s.storage.UpdateAvatarURL(ctx, userID, url); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on UpdateAvatarURL", "err", err)
			return "", fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return url, nil
}
