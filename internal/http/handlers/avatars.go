package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/go-forum/internal/errors"
	"github.com/pribylovaa/go-forum/internal/http/middleware"
)

type avatarPresignRequest struct {
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
}

type avatarPresignResponse struct {
	UploadURL      string            `json:"upload_url"`
	AvatarKey      string            `json:"avatar_key"`
	ExpiresSec     int64             `json:"expires_sec"`
	RequiredHeader map[string]string `json:"required_header,omitempty"`
}

type avatarConfirmRequest struct {
	AvatarKey string `json:"avatar_key"`
}

type avatarConfirmResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// AvatarPresign — POST /users/avatar/presign. Требует сессию.
func (h *Handlers) AvatarPresign(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, errUnauthenticated())
		return
	}

	var in avatarPresignRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	info, err := h.Service.AvatarPresign(r.Context(), identity.UserID, in.ContentType, in.ContentLength)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avatarPresignResponse{
		UploadURL:      info.UploadURL,
		AvatarKey:      info.AvatarKey,
		ExpiresSec:     int64(info.Expires / time.Second),
		RequiredHeader: info.RequiredHeader,
	})
}

// AvatarConfirm — POST /users/avatar/confirm. Требует сессию.
func (h *Handlers) AvatarConfirm(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, errUnauthenticated())
		return
	}

	var in avatarConfirmRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	url, err := h.Service.AvatarConfirm(r.Context(), identity.UserID, in.AvatarKey)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avatarConfirmResponse{AvatarURL: url})
}
