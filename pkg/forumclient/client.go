// forumclient — Go-клиент форума: инкрементальная подгрузка страниц
// generic-выдачи /load-objects/ и отправка ответов через /new-reply/.
//
// Клиент повторяет браузерный контракт: CSRF-токен читается из cookie
// csrftoken и прикладывается к мутирующим запросам заголовком X-CSRFToken.
package forumclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrEmptyContent — текст ответа пуст после TrimSpace; запрос не отправлялся.
	ErrEmptyContent = errors.New("empty content")
	// ErrSubmitInFlight — предыдущая отправка ещё не завершилась; запрос не отправлялся.
	ErrSubmitInFlight = errors.New("submit in flight")
	// ErrServer — сервер ответил не-2xx статусом.
	ErrServer = errors.New("server error")
)

// CSRFCookieName/CSRFHeaderName — контракт double-submit-cookie сервера.
const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
)

// Object — плоская запись generic-выдачи, как её отдаёт сервер.
type Object = map[string]any

// Client — HTTP-клиент форума с cookie jar.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет транспорт (например, для httptest).
// Если у клиента нет cookie jar, он будет добавлен.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New создает клиента форума для базового URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("forumclient: parse base url: %w", err)
	}

	c := &Client{base: base}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("forumclient: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}

	return c, nil
}

// CSRFToken возвращает значение cookie csrftoken из jar.
// Отсутствие cookie — не ошибка: ok=false, мутирующий запрос уйдёт
// без заголовка (и сервер его отвергнет).
func (c *Client) CSRFToken() (string, bool) {
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == CSRFCookieName && cookie.Value != "" {
			return cookie.Value, true
		}
	}
	return "", false
}

// Bootstrap делает GET базовой страницы, чтобы сервер выпустил
// csrftoken cookie до первой мутации.
func (c *Client) Bootstrap(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return fmt.Errorf("forumclient: bootstrap: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("forumclient: bootstrap: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("forumclient: bootstrap: %w: status %d", ErrServer, resp.StatusCode)
	}

	return nil
}

// objectPage — ответ /load-objects/.
type objectPage struct {
	Objects []Object `json:"objects"`
	HasNext bool     `json:"has_next"`
	Count   *int64   `json:"count,omitempty"`
}

// loadObjects — POST /load-objects/ с form-телом и query-параметрами.
func (c *Client) loadObjects(ctx context.Context, form url.Values, query url.Values) (*objectPage, error) {
	endpoint := c.resolve("/load-objects/")
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("forumclient: load objects: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.attachCSRF(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forumclient: load objects: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("forumclient: load objects: %w: status %d", ErrServer, resp.StatusCode)
	}

	var page objectPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("forumclient: load objects: decode: %w", err)
	}

	return &page, nil
}

// postJSON — мутирующий JSON-запрос с X-CSRFToken.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("forumclient: post %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.resolve(path).String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("forumclient: post %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachCSRF(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("forumclient: post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("forumclient: post %s: %w: status %d", path, ErrServer, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("forumclient: post %s: decode: %w", path, err)
		}
	}

	return nil
}

func (c *Client) attachCSRF(req *http.Request) {
	if token, ok := c.CSRFToken(); ok {
		req.Header.Set(CSRFHeaderName, token)
	}
}

func (c *Client) resolve(path string) *url.URL {
	ref := &url.URL{Path: path}
	return c.base.ResolveReference(ref)
}
