package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/storage"
)

// CategoryBySlug возвращает категорию по слагу.
// Если запись не найдена — storage.ErrNotFound.
func (s *Storage) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	const op = "storage.postgres.CategoryBySlug"

	query := `
		SELECT id, name, description, slug
		FROM categories
		WHERE slug = $1
	`

	var cat models.Category
	err := s.db.QueryRow(ctx, query, slug).Scan(
		&cat.ID,
		&cat.Name,
		&cat.Description,
		&cat.Slug,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cat, nil
}

// SaveTopic создает новую тему.
// Конфликт по slug — storage.ErrAlreadyExists.
func (s *Storage) SaveTopic(ctx context.Context, topic *models.Topic) error {
	const op = "storage.postgres.SaveTopic"

	query := `
		INSERT INTO topics(id, title, slug, content, category_id, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(ctx, query,
		topic.ID,
		topic.Title,
		topic.Slug,
		topic.Content,
		topic.CategoryID,
		topic.AuthorID,
		topic.CreatedAt,
		topic.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// TopicBySlug возвращает тему по слагу вместе с аннотациями
// author_name и replies_count (для страницы темы).
// Если запись не найдена — storage.ErrNotFound.
func (s *Storage) TopicBySlug(ctx context.Context, slug string) (*models.Topic, error) {
	const op = "storage.postgres.TopicBySlug"

	query := `
		SELECT t.id, t.title, t.slug, t.content, t.category_id, t.author_id,
		       t.created_at, t.updated_at,
		       u.username AS author_name,
		       (SELECT count(*) FROM replies r WHERE r.topic_id = t.id) AS replies_count
		FROM topics t
		JOIN users u ON u.id = t.author_id
		WHERE t.slug = $1
	`

	var topic models.Topic
	err := s.db.QueryRow(ctx, query, slug).Scan(
		&topic.ID,
		&topic.Title,
		&topic.Slug,
		&topic.Content,
		&topic.CategoryID,
		&topic.AuthorID,
		&topic.CreatedAt,
		&topic.UpdatedAt,
		&topic.AuthorName,
		&topic.RepliesCount,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Нормализация в UTC.
	topic.CreatedAt = topic.CreatedAt.UTC()
	topic.UpdatedAt = topic.UpdatedAt.UTC()

	return &topic, nil
}
