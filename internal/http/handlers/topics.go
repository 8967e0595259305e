package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-forum/internal/errors"
	"github.com/pribylovaa/go-forum/internal/http/middleware"
	"github.com/pribylovaa/go-forum/internal/service"
)

// NewTopic — POST /new-topic/ (обычная форма, не JSON).
// Требует сессию (401) и CSRF (мидлвар). Успех — redirect на категорию.
func (h *Handlers) NewTopic(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, errUnauthenticated())
		return
	}

	if err := r.ParseForm(); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	topic, err := h.Service.CreateTopic(r.Context(), service.CreateTopicInput{
		Title:        r.PostForm.Get("title"),
		Content:      r.PostForm.Get("content"),
		CategorySlug: r.PostForm.Get("category"),
		AuthorID:     identity.UserID,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, "/topic/"+topic.Slug+"/", http.StatusSeeOther)
}
