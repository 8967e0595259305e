// http собирает роутер forum-service: страницы, generic-выдача,
// мутации и служебные эндпойнты.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-forum/internal/config"
	"github.com/pribylovaa/go-forum/internal/http/handlers"
	"github.com/pribylovaa/go-forum/internal/http/middleware"
	"github.com/pribylovaa/go-forum/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, cfg *config.Config, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(routePattern),
		middleware.CSRF(cfg.Env != "local"), // double-submit-cookie до любых мутаций
		middleware.Session(svc),             // мягко восстанавливаем личность из cookie
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, cfg)
	registerRoutes(root, h)

	return root
}

// routePattern возвращает chi-шаблон маршрута после обработки
// (для меток метрик без раздувания кардинальности).
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// registerRoutes — единая точка регистрации всех эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// страницы
	r.Get("/", h.Index)
	r.Get("/category/", h.CategoryList)
	r.Get("/category/{slug}/", h.CategoryDetail)
	r.Get("/topic/{slug}/", h.TopicDetail)
	r.Get("/new-topic/", h.NewTopicPage)
	r.Get("/sign-up/", h.SignUpPage)
	r.Get("/login/", h.LoginPage)

	// generic-выдача и мутации
	r.Post("/load-objects/", h.LoadObjects)
	r.Post("/new-reply/", h.NewReply)
	r.Post("/new-topic/", h.NewTopic)

	// auth
	r.Post("/sign-up/", h.SignUp)
	r.Post("/login/", h.Login)
	r.Post("/logout/", h.Logout)

	// аватары
	r.Post("/users/avatar/presign", h.AvatarPresign)
	r.Post("/users/avatar/confirm", h.AvatarConfirm)
}
