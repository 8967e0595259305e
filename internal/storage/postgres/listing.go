package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/storage"
)

// Маппинг фильтров /load-objects/ на SQL-условия по моделям.
// Ключи — разрешённые имена фильтров, значения — условие с одним плейсхолдером.
var filterConditions = map[string]map[string]string{
	storage.ModelTopic: {
		"category__slug": "c.slug = %s",
		"author_id":      "t.author_id = %s::uuid",
	},
	storage.ModelReply: {
		"topic__slug": "tp.slug = %s",
		"author_id":   "r.author_id = %s::uuid",
	},
	storage.ModelCategory: {},
}

// ListObjects возвращает страницу записей generic-выдачи.
//
// Контракт:
//   - q.Model уже провалидирован сервисным слоем; неизвестная модель — ErrInvalidArgument;
//   - Page/PerPage < 1 приводятся к 1 (защита от нуля/отрицательных);
//   - порядок фиксирован на модель: Category — name ASC, Topic — created_at DESC,
//     Reply — created_at ASC (тай-брейк по id);
//   - HasNext вычисляется выборкой PerPage+1 строк;
//   - аннотации author_name/replies_count включаются в записи только по запросу.
func (s *Storage) ListObjects(ctx context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
	const op = "storage.postgres.ListObjects"

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = 1
	}

	sql, args, err := buildListQuery(q, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	objects, err := scanObjects(rows, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result models.ObjectPage
	if len(objects) > perPage {
		result.HasNext = true
		objects = objects[:perPage]
	}
	result.Objects = objects

	if q.WithCount {
		countSQL, countArgs, err := buildCountQuery(q)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		var total int64
		if err := s.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result.Count = &total
	}

	return &result, nil
}

// buildListQuery собирает SELECT с whitelisted-условиями и пагинацией.
// Лишняя строка (LIMIT per_page+1) нужна для вычисления has_next без count(*).
func buildListQuery(q storage.ListQuery, page, perPage int) (string, []any, error) {
	var (
		b       strings.Builder
		where   []string
		args    []any
		orderBy string
	)

	ph := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch q.Model {
	case storage.ModelCategory:
		b.WriteString(`SELECT id::text, name, description, slug FROM categories`)
		for _, slug := range q.ExcludeSlugs {
			where = append(where, fmt.Sprintf("slug <> %s", ph(slug)))
		}
		orderBy = "name ASC, id ASC"

	case storage.ModelTopic:
		b.WriteString(`SELECT t.id::text, t.title, t.slug, t.content,
			t.category_id::text, t.author_id::text, t.created_at, t.updated_at`)
		if q.AnnotateAuthorName {
			b.WriteString(`, u.username AS author_name`)
		}
		if q.RepliesCount {
			b.WriteString(`, (SELECT count(*) FROM replies r WHERE r.topic_id = t.id) AS replies_count`)
		}
		b.WriteString(` FROM topics t`)
		if q.AnnotateAuthorName {
			b.WriteString(` JOIN users u ON u.id = t.author_id`)
		}
		if _, ok := q.Filters["category__slug"]; ok {
			b.WriteString(` JOIN categories c ON c.id = t.category_id`)
		}
		orderBy = "t.created_at DESC, t.id DESC"

	case storage.ModelReply:
		b.WriteString(`SELECT r.id::text, r.topic_id::text, r.author_id::text, r.content, r.created_at`)
		if q.AnnotateAuthorName {
			b.WriteString(`, u.username AS author_name`)
		}
		b.WriteString(` FROM replies r`)
		if q.AnnotateAuthorName {
			b.WriteString(` JOIN users u ON u.id = r.author_id`)
		}
		if _, ok := q.Filters["topic__slug"]; ok {
			b.WriteString(` JOIN topics tp ON tp.id = r.topic_id`)
		}
		orderBy = "r.created_at ASC, r.id ASC"

	default:
		return "", nil, storage.ErrInvalidArgument
	}

	conds := filterConditions[q.Model]
	for key, value := range q.Filters {
		cond, ok := conds[key]
		if !ok {
			// Сервисный слой отбрасывает лишние ключи; здесь — защитный отказ.
			return "", nil, storage.ErrInvalidArgument
		}
		where = append(where, fmt.Sprintf(cond, ph(value)))
	}

	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY " + orderBy)
	b.WriteString(fmt.Sprintf(" LIMIT %s OFFSET %s", ph(perPage+1), ph((page-1)*perPage)))

	return b.String(), args, nil
}

// buildCountQuery собирает count(*) под теми же фильтрами, что и выборка.
func buildCountQuery(q storage.ListQuery) (string, []any, error) {
	var (
		b     strings.Builder
		where []string
		args  []any
	)

	ph := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch q.Model {
	case storage.ModelCategory:
		b.WriteString(`SELECT count(*) FROM categories`)
		for _, slug := range q.ExcludeSlugs {
			where = append(where, fmt.Sprintf("slug <> %s", ph(slug)))
		}

	case storage.ModelTopic:
		b.WriteString(`SELECT count(*) FROM topics t`)
		if _, ok := q.Filters["category__slug"]; ok {
			b.WriteString(` JOIN categories c ON c.id = t.category_id`)
		}

	case storage.ModelReply:
		b.WriteString(`SELECT count(*) FROM replies r`)
		if _, ok := q.Filters["topic__slug"]; ok {
			b.WriteString(` JOIN topics tp ON tp.id = r.topic_id`)
		}

	default:
		return "", nil, storage.ErrInvalidArgument
	}

	conds := filterConditions[q.Model]
	for key, value := range q.Filters {
		cond, ok := conds[key]
		if !ok {
			return "", nil, storage.ErrInvalidArgument
		}
		where = append(where, fmt.Sprintf(cond, ph(value)))
	}

	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	return b.String(), args, nil
}

// scanObjects раскладывает строки выборки в плоские Object-словари.
// Набор ключей зависит от модели и запрошенных аннотаций.
func scanObjects(rows pgx.Rows, q storage.ListQuery) ([]models.Object, error) {
	objects := []models.Object{}

	for rows.Next() {
		var obj models.Object

		switch q.Model {
		case storage.ModelCategory:
			var cat models.Category
			var id string
			if err := rows.Scan(&id, &cat.Name, &cat.Description, &cat.Slug); err != nil {
				return nil, fmt.Errorf("scan row: %w", err)
			}
			obj = models.Object{
				"id":          id,
				"name":        cat.Name,
				"description": cat.Description,
				"slug":        cat.Slug,
			}

		case storage.ModelTopic:
			var t models.Topic
			var id, categoryID, authorID string
			dest := []any{&id, &t.Title, &t.Slug, &t.Content, &categoryID, &authorID, &t.CreatedAt, &t.UpdatedAt}
			if q.AnnotateAuthorName {
				dest = append(dest, &t.AuthorName)
			}
			if q.RepliesCount {
				dest = append(dest, &t.RepliesCount)
			}
			if err := rows.Scan(dest...); err != nil {
				return nil, fmt.Errorf("scan row: %w", err)
			}
			obj = models.Object{
				"id":         id,
				"title":      t.Title,
				"slug":       t.Slug,
				"content":    t.Content,
				"category":   categoryID,
				"author":     authorID,
				"created_at": t.CreatedAt.UTC(),
				"updated_at": t.UpdatedAt.UTC(),
			}
			if q.AnnotateAuthorName {
				obj["author_name"] = t.AuthorName
			}
			if q.RepliesCount {
				obj["replies_count"] = t.RepliesCount
			}

		case storage.ModelReply:
			var r models.Reply
			var id, topicID, authorID string
			dest := []any{&id, &topicID, &authorID, &r.Content, &r.CreatedAt}
			if q.AnnotateAuthorName {
				dest = append(dest, &r.AuthorName)
			}
			if err := rows.Scan(dest...); err != nil {
				return nil, fmt.Errorf("scan row: %w", err)
			}
			obj = models.Object{
				"id":         id,
				"topic":      topicID,
				"author":     authorID,
				"content":    r.Content,
				"created_at": r.CreatedAt.UTC(),
			}
			if q.AnnotateAuthorName {
				obj["author_name"] = r.AuthorName
			}
		}

		objects = append(objects, obj)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows: %w", rows.Err())
	}

	return objects, nil
}
