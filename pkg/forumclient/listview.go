package forumclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
)

// DefaultPerPage — размер страницы по умолчанию (контракт сервера).
const DefaultPerPage = 7

// DefaultScrollThreshold — дистанция до конца списка (в пикселях),
// при которой MaybeLoadNext запускает подгрузку.
const DefaultScrollThreshold = 100

// RenderFunc превращает запись выдачи в элемент списка (HTML-строку).
type RenderFunc func(Object) string

// ListViewConfig — параметры инкрементального списка.
type ListViewConfig struct {
	// Model — Category/Topic/Reply.
	Model string
	// Filters — whitelisted-фильтры выдачи (topic__slug и т.п.).
	Filters map[string]string
	// Query — дополнительные query-параметры /load-objects/
	// (format_function, format_args[], annotate_author_name, related_counts).
	Query url.Values
	// PerPage — размер страницы; <=0 — DefaultPerPage.
	PerPage int
	// Render — рендерер элемента; nil — элементы не материализуются,
	// но записи всё равно копятся в Objects.
	Render RenderFunc
	// Threshold — дистанция срабатывания MaybeLoadNext; <=0 — DefaultScrollThreshold.
	Threshold int
}

// ListView — инкрементальный список одной выдачи: держит курсор страницы,
// in-flight guard и признак исчерпания. Каждое представление на странице —
// отдельный экземпляр со своим состоянием.
type ListView struct {
	client *Client
	cfg    ListViewConfig

	inFlight  atomic.Bool
	exhausted atomic.Bool

	// page мутирует только владелец inFlight.
	page int

	mu      sync.Mutex
	objects []Object
	items   []string
}

// NewListView создает список с курсором на первой странице.
func NewListView(client *Client, cfg ListViewConfig) *ListView {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultScrollThreshold
	}

	return &ListView{
		client: client,
		cfg:    cfg,
		page:   1,
	}
}

// LoadNext подгружает следующую страницу выдачи.
//
// Контракт:
//   - пока запрос в полёте, повторные вызовы — no-op (guard, не триггер,
//     ограничивает число запросов);
//   - после has_next=false список исчерпан навсегда, вызовы — no-op;
//   - успех: записи добавляются в порядке сервера, курсор сдвигается
//     только при has_next=true;
//   - ошибка: курсор не двигается, та же страница будет запрошена снова;
//   - guard снимается ровно один раз на любом исходе.
func (v *ListView) LoadNext(ctx context.Context) error {
	if v.exhausted.Load() {
		return nil
	}
	if !v.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer v.inFlight.Store(false)

	form := url.Values{}
	form.Set("page", strconv.Itoa(v.page))
	form.Set("per_page", strconv.Itoa(v.cfg.PerPage))
	form.Set("model", v.cfg.Model)
	for key, value := range v.cfg.Filters {
		form.Set(key, value)
	}

	page, err := v.client.loadObjects(ctx, form, v.cfg.Query)
	if err != nil {
		return fmt.Errorf("listview: %w", err)
	}

	v.appendPage(page.Objects)

	if page.HasNext {
		v.page++
	} else {
		v.exhausted.Store(true)
	}

	return nil
}

// MaybeLoadNext — триггер по дистанции прокрутки: если до конца списка
// осталось не больше порога, запускает LoadNext. Безопасен на любой
// частоте вызова — объём запросов ограничивает guard.
func (v *ListView) MaybeLoadNext(ctx context.Context, distance int) error {
	if distance > v.cfg.Threshold {
		return nil
	}
	return v.LoadNext(ctx)
}

// Exhausted — true после страницы с has_next=false.
func (v *ListView) Exhausted() bool {
	return v.exhausted.Load()
}

// Objects возвращает копию накопленных записей в порядке сервера.
func (v *ListView) Objects() []Object {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]Object, len(v.objects))
	copy(out, v.objects)
	return out
}

// Items возвращает копию отрендеренных элементов в порядке сервера.
func (v *ListView) Items() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}

func (v *ListView) appendPage(objects []Object) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, obj := range objects {
		v.objects = append(v.objects, obj)
		if v.cfg.Render != nil {
			v.items = append(v.items, v.cfg.Render(obj))
		}
	}
}
