package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/pkg/log"
	"github.com/pribylovaa/go-forum/internal/storage"
)

// Число попыток подобрать уникальный слаг с числовым суффиксом.
const slugAttempts = 5

// CreateTopicInput — создание темы в категории.
type CreateTopicInput struct {
	Title        string
	Content      string
	CategorySlug string
	AuthorID     uuid.UUID
}

// CreateTopic — бизнес-операция создания темы.
//
// Валидация:
//   - AuthorID обязателен;
//   - Title/Content нормализуются (TrimSpace), не пустые, в пределах
//     cfg.Limits (MaxTitleLen/MaxContentLen); контент санитизируется;
//   - категория должна существовать (ErrNotFound) и не быть mytopics
//     (ErrForbiddenCategory).
//
// Слаг генерируется из Title; при конфликте уникальности добавляется
// числовой суффикс (-2, -3, ...), после slugAttempts — ErrAlreadyExists.
func (s *Service) CreateTopic(ctx context.Context, in CreateTopicInput) (*models.Topic, error) {
	const op = "service/topics/CreateTopic"

	lg := log.From(ctx).With(
		"op", op,
		"category_slug", in.CategorySlug,
		"author_id", in.AuthorID.String(),
	)

	if in.AuthorID == uuid.Nil {
		lg.Warn("invalid argument: empty author_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		lg.Warn("invalid argument: empty title")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}
	if max := s.cfg.Limits.MaxTitleLen; max > 0 && len(in.Title) > max {
		lg.Warn("invalid argument: title too long", "len", len(in.Title))
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

	category, err := s.CategoryBySlug(ctx, in.CategorySlug)
	if err != nil {
		return nil, err
	}

	if category.Slug == MyTopicsSlug {
		lg.Warn("attempt to post into mytopics")
		return nil, fmt.Errorf("%s: %w", op, ErrForbiddenCategory)
	}

	base := Slugify(in.Title)
	if base == "" {
		lg.Warn("invalid argument: title yields empty slug")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	now := time.Now().UTC()
	topic := &models.Topic{
		ID:         uuid.New(),
		Title:      in.Title,
		Content:    s.sanitizer.Sanitize(in.Content),
		CategoryID: category.ID,
		AuthorID:   in.AuthorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for attempt := 1; attempt <= slugAttempts; attempt++ {
		topic.Slug = base
		if attempt > 1 {
			topic.Slug = fmt.Sprintf("%s-%d", base, attempt)
		}

		err = s.storage.SaveTopic(ctx, topic)
		if err == nil {
			return topic, nil
		}
		if !errors.Is(err, storage.ErrAlreadyExists) {
			lg.Error("storage error on SaveTopic", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Warn("slug conflict not resolved", "slug", base)
	return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
}

// TopicBySlug — тема по слагу с аннотациями author_name/replies_count.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой слаг;
//   - ErrNotFound — тема не найдена;
//   - ErrInternal — иные ошибки стораджа.
func (s *Service) TopicBySlug(ctx context.Context, slug string) (*models.Topic, error) {
	const op = "service/topics/TopicBySlug"

	slug = strings.TrimSpace(slug)
	lg := log.From(ctx).With("op", op, "slug", slug)

	if slug == "" {
		lg.Warn("invalid argument: empty slug")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	topic, err := s.storage.TopicBySlug(ctx, slug)
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

	return topic, nil
}

// CategoryBySlug — категория по слагу.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой слаг;
//   - ErrNotFound — категория не найдена;
//   - ErrInternal — иные ошибки стораджа.
func (s *Service) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	const op = "service/topics/CategoryBySlug"

	slug = strings.TrimSpace(slug)
	lg := log.From(ctx).With("op", op, "slug", slug)

	if slug == "" {
		lg.Warn("invalid argument: empty slug")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	category, err := s.storage.CategoryBySlug(ctx, slug)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("category not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CategoryBySlug", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return category, nil
}
