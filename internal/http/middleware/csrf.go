package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"

	apierrors "github.com/pribylovaa/go-forum/internal/errors"
	logctx "github.com/pribylovaa/go-forum/internal/pkg/log"
)

// Имена CSRF-артефактов по контракту фронтенда.
const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
)

// CSRF реализует double-submit-cookie защиту:
//   - на безопасных методах (GET/HEAD/OPTIONS) гарантирует наличие
//     cookie csrftoken, при отсутствии выпускает новый токен;
//   - на мутирующих методах сверяет заголовок X-CSRFToken с cookie
//     (сравнение константное по времени); расхождение -> 403.
//
// secure управляет флагом Secure у cookie (true вне local-окружения).
func CSRF(secure bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if _, err := r.Cookie(CSRFCookieName); err != nil {
					token := genCSRFToken()
					http.SetCookie(w, &http.Cookie{
						Name:     CSRFCookieName,
						Value:    token,
						Path:     "/",
						Secure:   secure,
						SameSite: http.SameSiteLaxMode,
						// HttpOnly специально выключен: фронт читает
						// токен из document.cookie для X-CSRFToken.
						HttpOnly: false,
					})
					r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
				}
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(CSRFCookieName)
			header := r.Header.Get(CSRFHeaderName)

			if err != nil || cookie.Value == "" || header == "" ||
				subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
				logctx.From(r.Context()).Warn("csrf check failed",
					"path", r.URL.Path, "method", r.Method)
				writeCSRFError(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeCSRFError(w http.ResponseWriter, r *http.Request) {
	resp := apierrors.ErrorResponse{
		Error: apierrors.APIError{
			Code:      "csrf_failed",
			Message:   "csrf verification failed",
			RequestID: r.Header.Get("X-Request-Id"),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(resp)
}

func genCSRFToken() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
