package forumclient

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// ReplyItem — карточка свежесозданного ответа: имя автора локальное
// (пользователь и так его знает), время — серверное из ответа /new-reply/.
type ReplyItem struct {
	ID         string
	AuthorName string
	Content    string
	Time       string
}

// ReplyComposer — состояние формы ответа в теме: idle/submitting,
// ключом служит один in-flight флаг.
type ReplyComposer struct {
	client     *Client
	topicSlug  string
	authorName string

	submitting atomic.Bool
}

// NewReplyComposer создает композер для темы.
// authorName — имя текущего пользователя для локальной карточки.
func NewReplyComposer(client *Client, topicSlug, authorName string) *ReplyComposer {
	return &ReplyComposer{
		client:     client,
		topicSlug:  topicSlug,
		authorName: authorName,
	}
}

// Submitting — true, пока предыдущая отправка не завершилась.
func (c *ReplyComposer) Submitting() bool {
	return c.submitting.Load()
}

// Submit отправляет текст ответа.
//
// Контракт:
//   - пустой после TrimSpace текст — ErrEmptyContent, запрос не уходит,
//     состояние не меняется;
//   - повторный вызов во время отправки — ErrSubmitInFlight, второй
//     запрос не уходит;
//   - не-2xx/транспортная ошибка — ошибка наружу, композер остаётся
//     рабочим (флаг снят);
//   - успех — ровно один ReplyItem; флаг снимается безусловно на любом
//     исходе, ровно один раз.
func (c *ReplyComposer) Submit(ctx context.Context, text string) (*ReplyItem, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}

	if !c.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer c.submitting.Store(false)

	req := struct {
		Reply     string `json:"reply"`
		TopicSlug string `json:"topic_slug"`
	}{
		Reply:     trimmed,
		TopicSlug: c.topicSlug,
	}

	var resp struct {
		ID         string `json:"id"`
		AuthorName string `json:"author_name"`
		Content    string `json:"content"`
		Time       string `json:"time"`
	}

	if err := c.client.postJSON(ctx, "/new-reply/", req, &resp); err != nil {
		return nil, fmt.Errorf("composer: %w", err)
	}

	return &ReplyItem{
		ID:         resp.ID,
		AuthorName: c.authorName,
		Content:    resp.Content,
		Time:       resp.Time,
	}, nil
}
