package handlers

import (
	"net/http"
	"strconv"

	apierrors "github.com/pribylovaa/go-forum/internal/errors"
	"github.com/pribylovaa/go-forum/internal/http/middleware"
	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/service"
)

// Ключи тела /load-objects/, которые не являются фильтрами.
var reservedListKeys = map[string]bool{
	"page":     true,
	"per_page": true,
	"model":    true,
	"count":    true,
}

// loadObjectsResponse — контракт выдачи для инкрементального клиента.
type loadObjectsResponse struct {
	Objects []models.Object `json:"objects"`
	HasNext bool            `json:"has_next"`
	Count   *int64          `json:"count,omitempty"`
}

// LoadObjects — POST /load-objects/.
//
// Тело (form-encoded): page (по умолчанию 1), per_page (по умолчанию из
// конфига), model, count=true; остальные пары — фильтры. Query-параметры:
// format_function + format_args[], annotate_author_name, related_counts.
func (h *Handlers) LoadObjects(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	in := service.ListObjectsInput{
		Model:   r.PostForm.Get("model"),
		Page:    1,
		PerPage: h.Cfg.Limits.DefaultPerPage,
		Filters: map[string]string{},
	}

	if v := r.PostForm.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			apierrors.WriteError(w, r, errInvalidArgument())
			return
		}
		in.Page = n
	}

	if v := r.PostForm.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			apierrors.WriteError(w, r, errInvalidArgument())
			return
		}
		in.PerPage = n
	}

	in.WithCount = r.PostForm.Get("count") == "true"

	for key, values := range r.PostForm {
		if reservedListKeys[key] || len(values) == 0 {
			continue
		}
		in.Filters[key] = values[0]
	}

	query := r.URL.Query()
	in.FormatFunction = query.Get("format_function")
	in.FormatArgs = query["format_args[]"]
	in.AnnotateAuthorName = query.Get("annotate_author_name") != ""
	in.RelatedCounts = query.Get("related_counts")

	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		in.Authenticated = true
		in.CallerID = identity.UserID
	}

	page, err := h.Service.ListObjects(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loadObjectsResponse{
		Objects: page.Objects,
		HasNext: page.HasNext,
		Count:   page.Count,
	})
}
