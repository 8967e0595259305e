package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/storage"
)

// SaveReply создает ответ в теме и возвращает его с проставленными
// ID/CreatedAt/AuthorName.
// Если тема или автор не существуют (нарушение FK) — storage.ErrNotFound.
func (s *Storage) SaveReply(ctx context.Context, reply *models.Reply) (*models.Reply, error) {
	const op = "storage.postgres.SaveReply"

	out := *reply
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	out.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO replies(id, topic_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(ctx, query,
		out.ID,
		out.TopicID,
		out.AuthorID,
		out.Content,
		out.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.ForeignKeyViolation:
				return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
			case pgerrcode.UniqueViolation:
				return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
			}
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Имя автора нужно клиенту сразу после создания — добираем одним запросом.
	if out.AuthorName == "" {
		if err := s.db.QueryRow(ctx,
			`SELECT username FROM users WHERE id = $1`, out.AuthorID,
		).Scan(&out.AuthorName); err != nil {
			return nil, fmt.Errorf("%s: author name: %w", op, err)
		}
	}

	return &out, nil
}
