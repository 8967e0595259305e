package forumclient

import (
	"fmt"
	"html"
)

// Готовые рендереры под три представления форума. Поля берутся из
// записей /load-objects/ с соответствующими аннотациями
// (annotate_author_name, related_counts=replies, datetime_format).

// RenderCategoryItem — элемент списка категорий: имя, описание, ссылка.
func RenderCategoryItem(obj Object) string {
	return fmt.Sprintf(
		`<li><a href="/category/%s/">%s</a><p>%s</p></li>`,
		html.EscapeString(str(obj, "slug")),
		html.EscapeString(str(obj, "name")),
		html.EscapeString(str(obj, "description")),
	)
}

// RenderTopicItem — элемент списка тем: заголовок, автор, дата, число ответов.
func RenderTopicItem(obj Object) string {
	return fmt.Sprintf(
		`<li><a href="/topic/%s/">%s</a><span>%s</span><span>%s</span><span>%s replies</span></li>`,
		html.EscapeString(str(obj, "slug")),
		html.EscapeString(str(obj, "title")),
		html.EscapeString(str(obj, "author_name")),
		html.EscapeString(str(obj, "created_at")),
		html.EscapeString(str(obj, "replies_count")),
	)
}

// RenderReplyItem — карточка ответа: текст, автор, время.
func RenderReplyItem(obj Object) string {
	return fmt.Sprintf(
		`<li><p>%s</p><span>%s</span><span>%s</span></li>`,
		html.EscapeString(str(obj, "content")),
		html.EscapeString(str(obj, "author_name")),
		html.EscapeString(str(obj, "created_at")),
	)
}

// str — поле записи как строка; числа из JSON приходят как float64.
func str(obj Object, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
