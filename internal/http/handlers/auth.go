package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-forum/internal/errors"
	"github.com/pribylovaa/go-forum/internal/http/middleware"
	"github.com/pribylovaa/go-forum/internal/service"
)

// SignUp — POST /sign-up/ (форма username/email/password).
// Успех: сразу выпускаем сессию и редиректим на главную.
func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), service.RegisterInput{
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	token, err := h.Service.IssueSession(r.Context(), user)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Login — POST /login/ (форма username/password).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	user, err := h.Service.LoginUser(r.Context(),
		r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	token, err := h.Service.IssueSession(r.Context(), user)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout — POST /logout/: гасим сессионную cookie и редиректим на главную.
// Состояния на сервере нет, инвалидация — истечение TTL токена.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Cfg.Auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) secureCookies() bool {
	return h.Cfg.Env != "local"
}
