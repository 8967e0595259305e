package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/pkg/log"
	"github.com/pribylovaa/go-forum/internal/storage"
)

// CreateReplyInput — создание ответа в теме.
type CreateReplyInput struct {
	TopicSlug string
	Content   string
	AuthorID  uuid.UUID
}

// CreateReply — бизнес-операция создания ответа.
//
// Валидация:
//   - AuthorID обязателен (uuid.Nil -> ErrInvalidArgument);
//   - Content нормализуется (TrimSpace), не должен быть пустым и не должен
//     превышать cfg.Limits.MaxContentLen; HTML санитизируется (UGC-политика);
//   - TopicSlug обязателен.
//
// Поведение/ошибки:
//   - ErrRateLimited — превышен лимит публикаций в окне;
//   - ErrNotFound — тема не существует;
//   - ErrInternal — прочие ошибки стораджа/БД/контекста.
func (s *Service) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	const op = "service/replies/CreateReply"

	lg := log.From(ctx).With(
		"op", op,
		"topic_slug", in.TopicSlug,
		"author_id", in.AuthorID.String(),
	)

	if in.AuthorID == uuid.Nil {
		lg.Warn("invalid argument: empty author_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.TopicSlug = strings.TrimSpace(in.TopicSlug)
	if in.TopicSlug == "" {
		lg.Warn("invalid argument: empty topic_slug")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}
	if max := s.cfg.Limits.MaxContentLen; max > 0 && len(in.Content) > max {
		lg.Warn("invalid argument: content too long", "len", len(in.Content))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	content := s.sanitizer.Sanitize(in.Content)

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, in.AuthorID)
		if err != nil {
			// Недоступность Redis не должна ронять публикацию.
			lg.Warn("reply limiter unavailable", "err", err)
		} else if !allowed {
			lg.Warn("rate limited")
			return nil, fmt.Errorf("%s: %w", op, ErrRateLimited)
		}
	}

	topic, err := s.storage.TopicBySlug(ctx, in.TopicSlug)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("topic not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on TopicBySlug", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	reply := &models.Reply{
		TopicID:  topic.ID,
		AuthorID: in.AuthorID,
		Content:  content,
	}

	result, err := s.storage.SaveReply(ctx, reply)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("topic or author vanished")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on SaveReply", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}
