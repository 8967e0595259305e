package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/go-forum/internal/errors"
	"github.com/pribylovaa/go-forum/internal/http/middleware"
	logctx "github.com/pribylovaa/go-forum/internal/pkg/log"
	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/service"
)

// pageData — модель данных server-rendered страниц. Страница встраивает
// первую страницу выдачи; дальнейшие страницы клиент добирает через
// POST /load-objects/ с теми же фильтрами.
type pageData struct {
	Title         string
	Authenticated bool
	Username      string

	Categories []models.Object
	Topics     []models.Object
	Replies    []models.Object
	Category   *models.Category
	Topic      *models.Topic
}

// Index — GET /: список категорий.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	h.renderCategoryList(w, r, "index.html", "Forum")
}

// CategoryList — GET /category/: список категорий.
func (h *Handlers) CategoryList(w http.ResponseWriter, r *http.Request) {
	h.renderCategoryList(w, r, "categories.html", "Categories")
}

func (h *Handlers) renderCategoryList(w http.ResponseWriter, r *http.Request, tmpl, title string) {
	data := h.newPageData(r, title)

	page, err := h.Service.ListObjects(r.Context(), h.listInput(r, service.ListObjectsInput{
		Model: "Category",
	}))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	data.Categories = page.Objects

	h.render(w, r, tmpl, data)
}

// CategoryDetail — GET /category/{slug}/: первая страница тем категории.
func (h *Handlers) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	category, err := h.Service.CategoryBySlug(r.Context(), slug)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	page, err := h.Service.ListObjects(r.Context(), h.listInput(r, service.ListObjectsInput{
		Model:              "Topic",
		Filters:            map[string]string{"category__slug": slug},
		AnnotateAuthorName: true,
		RelatedCounts:      "replies",
	}))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	data := h.newPageData(r, category.Name)
	data.Category = category
	data.Topics = page.Objects

	h.render(w, r, "category.html", data)
}

// TopicDetail — GET /topic/{slug}/: тема и первая страница ответов.
func (h *Handlers) TopicDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	topic, err := h.Service.TopicBySlug(r.Context(), slug)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	page, err := h.Service.ListObjects(r.Context(), h.listInput(r, service.ListObjectsInput{
		Model:              "Reply",
		Filters:            map[string]string{"topic__slug": slug},
		AnnotateAuthorName: true,
	}))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	data := h.newPageData(r, topic.Title)
	data.Topic = topic
	data.Replies = page.Objects

	h.render(w, r, "topic.html", data)
}

// NewTopicPage — GET /new-topic/: форма с выбором категории.
func (h *Handlers) NewTopicPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFrom(r.Context()); !ok {
		http.Redirect(w, r, "/login/", http.StatusSeeOther)
		return
	}

	data := h.newPageData(r, "New topic")

	page, err := h.Service.ListObjects(r.Context(), h.listInput(r, service.ListObjectsInput{
		Model: "Category",
	}))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	data.Categories = page.Objects

	h.render(w, r, "new_topic.html", data)
}

// SignUpPage — GET /sign-up/.
func (h *Handlers) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "sign_up.html", h.newPageData(r, "Sign up"))
}

// LoginPage — GET /login/.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", h.newPageData(r, "Log in"))
}

func (h *Handlers) newPageData(r *http.Request, title string) *pageData {
	data := &pageData{Title: title}
	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		data.Authenticated = true
		data.Username = identity.Username
	}
	return data
}

// listInput дополняет запрос выдачи параметрами первой страницы:
// page=1, per_page из конфига, человекочитаемые даты, личность вызывающего.
func (h *Handlers) listInput(r *http.Request, in service.ListObjectsInput) service.ListObjectsInput {
	in.Page = 1
	in.PerPage = h.Cfg.Limits.DefaultPerPage
	if in.Filters == nil {
		in.Filters = map[string]string{}
	}
	in.FormatFunction = "datetime_format"
	in.FormatArgs = []string{"created_at"}

	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		in.Authenticated = true
		in.CallerID = identity.UserID
	}

	return in
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data *pageData) {
	tmpl, ok := pageTemplates[name]
	if !ok {
		apierrors.WriteError(w, r, nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		// Заголовки уже могли уйти; фиксируем факт в логе.
		logctx.From(r.Context()).Error("template render failed", "page", name, "err", err)
	}
}
