package middleware

import (
	"context"
	"net/http"

	logctx "github.com/pribylovaa/go-forum/internal/pkg/log"
	"github.com/pribylovaa/go-forum/internal/service"
)

// SessionCookieName — cookie с сессионным JWT.
const SessionCookieName = "session"

// SessionValidator — часть сервиса, нужная мидлвару сессий.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (service.Identity, error)
}

// Session восстанавливает личность вызывающего из cookie session.
// Мидлвар мягкий: отсутствие или невалидность cookie не блокирует запрос,
// личность просто не попадает в контекст (решение принимает хендлер).
func Session(validator SessionValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := validator.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				logctx.From(r.Context()).Warn("session cookie rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom возвращает личность вызывающего из контекста.
func IdentityFrom(ctx context.Context) (service.Identity, bool) {
	identity, ok := ctx.Value(ctxIdentity).(service.Identity)
	return identity, ok
}
