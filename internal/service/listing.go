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

// Белые списки generic-выдачи. Всё, что не перечислено, либо молча
// отбрасывается (фильтры), либо приводит к ErrInvalidArgument
// (модель, related_counts).
var (
	allowedModels = map[string]bool{
		storage.ModelCategory: true,
		storage.ModelTopic:    true,
		storage.ModelReply:    true,
	}

	allowedFilterParams = map[string]bool{
		"topic__slug":    true,
		"category__slug": true,
		"author_id":      true,
	}

	allowedAnnotations = map[string]bool{
		"author_name": true,
		"replies":     true,
	}
)

// Форматтеры выдачи, доступные через query-параметр format_function.
// Неизвестное имя молча игнорируется (поведение оригинального эндпойнта).
var formatFunctions = map[string]func(obj models.Object, field string){
	"datetime_format": formatDateField,
}

// formatDateField заменяет временное поле записи на человекочитаемую строку.
func formatDateField(obj models.Object, field string) {
	if t, ok := obj[field].(time.Time); ok {
		obj[field] = FormatDatetime(t)
	}
}

// ListObjectsInput — параметры generic-выдачи /load-objects/.
// Filters — сырые пары вида field=value из тела запроса (без page/per_page/model).
type ListObjectsInput struct {
	Model   string
	Page    int
	PerPage int
	Filters map[string]string

	AnnotateAuthorName bool
	// RelatedCounts — список полей через запятую ("replies" -> replies_count).
	RelatedCounts string
	// FormatFunction/FormatArgs — пост-форматирование полей записи.
	FormatFunction string
	FormatArgs     []string
	// WithCount добавляет в ответ общее число записей под фильтром.
	WithCount bool

	// Authenticated/CallerID — личность вызывающего для mytopics-логики.
	Authenticated bool
	CallerID      uuid.UUID
}

// ListObjects — страница записей одной из моделей Category/Topic/Reply.
//
// Валидация:
//   - Model должна входить в белый список (иначе ErrInvalidArgument);
//   - Page/PerPage >= 1 (иначе ErrInvalidArgument); PerPage ограничивается
//     сверху cfg.Limits.MaxPerPage;
//   - фильтры вне белого списка отбрасываются;
//   - неизвестное поле в RelatedCounts -> ErrInvalidArgument.
//
// Поведение:
//   - анонимный вызов не видит категорию mytopics;
//   - фильтр category__slug=mytopics для авторизованного раскрывается в
//     author_id=CallerID; для анонима -> ErrInvalidArgument;
//   - форматтер применяется к каждой записи после выборки.
func (s *Service) ListObjects(ctx context.Context, in ListObjectsInput) (*models.ObjectPage, error) {
	const op = "service/listing/ListObjects"

	lg := log.From(ctx).With("op", op, "model", in.Model, "page", in.Page)

	if !allowedModels[in.Model] {
		lg.Warn("invalid argument: disallowed model")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Page < 1 || in.PerPage < 1 {
		lg.Warn("invalid argument: non-positive page/per_page")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	perPage := in.PerPage
	if max := s.cfg.Limits.MaxPerPage; max > 0 && perPage > max {
		perPage = max
	}

	q := storage.ListQuery{
		Model:              in.Model,
		Filters:            map[string]string{},
		Page:               in.Page,
		PerPage:            perPage,
		AnnotateAuthorName: in.AnnotateAuthorName,
		WithCount:          in.WithCount,
	}

	for key, value := range in.Filters {
		if allowedFilterParams[key] {
			q.Filters[key] = value
		}
	}

	if counts := strings.TrimSpace(in.RelatedCounts); counts != "" {
		for _, field := range strings.Split(counts, ",") {
			field = strings.TrimSpace(field)
			if !allowedAnnotations[field] {
				lg.Warn("invalid related count field", "field", field)
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
			}
			if field == "replies" {
				q.RepliesCount = true
			}
		}
	}

	// Псевдокатегория mytopics.
	if in.Model == storage.ModelCategory && !in.Authenticated {
		q.ExcludeSlugs = []string{MyTopicsSlug}
	}
	if slug, ok := q.Filters["category__slug"]; ok && slug == MyTopicsSlug {
		if !in.Authenticated {
			lg.Warn("anonymous access to mytopics")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
		delete(q.Filters, "category__slug")
		q.Filters["author_id"] = in.CallerID.String()
	}

	page, err := s.storage.ListObjects(ctx, q)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidArgument):
			lg.Warn("invalid listing query")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("storage error on ListObjects", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if fn, ok := formatFunctions[in.FormatFunction]; ok {
		for _, obj := range page.Objects {
			for _, field := range in.FormatArgs {
				fn(obj, field)
			}
		}
	}

	return page, nil
}
