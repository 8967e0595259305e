package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-forum/internal/errors"
	"github.com/pribylovaa/go-forum/internal/http/middleware"
	"github.com/pribylovaa/go-forum/internal/service"
)

// newReplyRequest — контракт композера ответов.
type newReplyRequest struct {
	Reply     string `json:"reply"`
	TopicSlug string `json:"topic_slug"`
}

// newReplyResponse — созданный ответ; Time уже отформатирован сервером,
// клиент вставляет его в карточку как есть.
type newReplyResponse struct {
	ID         string `json:"id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	Time       string `json:"time"`
}

// NewReply — POST /new-reply/. Требует сессию (401) и CSRF (мидлвар).
func (h *Handlers) NewReply(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, errUnauthenticated())
		return
	}

	var in newReplyRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	reply, err := h.Service.CreateReply(r.Context(), service.CreateReplyInput{
		TopicSlug: in.TopicSlug,
		Content:   in.Reply,
		AuthorID:  identity.UserID,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newReplyResponse{
		ID:         reply.ID.String(),
		AuthorName: reply.AuthorName,
		Content:    reply.Content,
		Time:       service.FormatDatetime(reply.CreatedAt),
	})
}
