package handlers

// Тесты HTTP-слоя (handlers) поверх реального сервисного слоя с
// замоканным стораджем.
//
//  Проверяем:
//  - round-trip /load-objects/: page=1&per_page=7&model=Reply&topic__slug=intro;
//  - валидацию параметров выдачи (нечисловой page -> 400);
//  - /new-reply/: 401 без сессии, 201 с телом {id,author_name,content,time};
//  - формат ошибки {"error":{code,message}}.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-forum/internal/config"
	"github.com/pribylovaa/go-forum/internal/http/middleware"
	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/service"
	"github.com/pribylovaa/go-forum/internal/storage"
	"github.com/pribylovaa/go-forum/internal/storage/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: "local",
		Limits: config.LimitsConfig{
			DefaultPerPage: 7,
			MaxPerPage:     100,
			MaxContentLen:  10000,
			MaxTitleLen:    200,
		},
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			Issuer:     "go-forum",
			SessionTTL: time.Hour,
		},
	}
}

func newHandlersWithMocks(t *testing.T) (*Handlers, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	cfg := testConfig()
	svc := service.New(ms, nil, nil, *cfg)
	return New(svc, cfg), ms, ctrl
}

// stubValidator — SessionValidator с фиксированной личностью.
type stubValidator struct {
	identity service.Identity
	err      error
}

func (s *stubValidator) ValidateSession(_ context.Context, _ string) (service.Identity, error) {
	return s.identity, s.err
}

// withIdentity оборачивает хендлер Session-мидлваром и подставляет cookie.
func withIdentity(h http.HandlerFunc, identity service.Identity) (http.Handler, *http.Cookie) {
	handler := middleware.Chain(h, middleware.Session(&stubValidator{identity: identity}))
	return handler, &http.Cookie{Name: middleware.SessionCookieName, Value: "jwt"}
}

type errEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// Round-trip первой страницы ответов темы.
func TestHandlers_LoadObjects_RoundTrip(t *testing.T) {
	h, ms, ctrl := newHandlersWithMocks(t)
	defer ctrl.Finish()

	created := time.Date(2026, time.August, 25, 15, 4, 0, 0, time.UTC)
	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
			require.Equal(t, storage.ModelReply, q.Model)
			require.Equal(t, 1, q.Page)
			require.Equal(t, 7, q.PerPage)
			require.Equal(t, map[string]string{"topic__slug": "intro"}, q.Filters)
			return &models.ObjectPage{
				Objects: []models.Object{
					{"id": "r1", "content": "first", "created_at": created},
					{"id": "r2", "content": "second", "created_at": created},
				},
				HasNext: true,
			}, nil
		})

	form := url.Values{}
	form.Set("page", "1")
	form.Set("per_page", "7")
	form.Set("model", "Reply")
	form.Set("topic__slug", "intro")

	rr := httptest.NewRecorder()
	h.LoadObjects(rr, postForm("/load-objects/?format_function=datetime_format&format_args[]=created_at", form))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Objects []map[string]any `json:"objects"`
		HasNext bool             `json:"has_next"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Objects, 2)
	require.True(t, resp.HasNext)
	require.Equal(t, "first", resp.Objects[0]["content"])
	require.Equal(t, "Aug. 25, 2026, 3:04 p.m.", resp.Objects[0]["created_at"])
}

// Пустые page/per_page берут умолчания 1 и DefaultPerPage.
func TestHandlers_LoadObjects_Defaults(t *testing.T) {
	h, ms, ctrl := newHandlersWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
			require.Equal(t, 1, q.Page)
			require.Equal(t, 7, q.PerPage)
			return &models.ObjectPage{Objects: []models.Object{}}, nil
		})

	form := url.Values{}
	form.Set("model", "Category")

	rr := httptest.NewRecorder()
	h.LoadObjects(rr, postForm("/load-objects/", form))
	require.Equal(t, http.StatusOK, rr.Code)
}

// Нечисловой page -> 400 invalid_argument.
func TestHandlers_LoadObjects_BadPage(t *testing.T) {
	h, _, ctrl := newHandlersWithMocks(t)
	defer ctrl.Finish()

	form := url.Values{}
	form.Set("page", "abc")
	form.Set("model", "Reply")

	rr := httptest.NewRecorder()
	h.LoadObjects(rr, postForm("/load-objects/", form))

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "invalid_argument", env.Error.Code)
}

// count=true добавляет поле count в ответ.
func TestHandlers_LoadObjects_Count(t *testing.T) {
	h, ms, ctrl := newHandlersWithMocks(t)
	defer ctrl.Finish()

	total := int64(42)
	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
			require.True(t, q.WithCount)
			return &models.ObjectPage{Objects: []models.Object{}, Count: &total}, nil
		})

	form := url.Values{}
	form.Set("model", "Category")
	form.Set("count", "true")

	rr := httptest.NewRecorder()
	h.LoadObjects(rr, postForm("/load-objects/", form))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.EqualValues(t, 42, resp["count"])
}

// Без сессии /new-reply/ отвечает 401.
func TestHandlers_NewReply_Unauthenticated(t *testing.T) {
	h, _, ctrl := newHandlersWithMocks(t)
	defer ctrl.Finish()

	body := `{"reply":"hi","topic_slug":"intro"}`
	req := httptest.NewRequest(http.MethodPost, "/new-reply/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.NewReply(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

// Happy-path /new-reply/: 201 и серверное время в ответе.
func TestHandlers_NewReply_OK(t *testing.T) {
	h, ms, ctrl := newHandlersWithMocks(t)
	defer ctrl.Finish()

	author := uuid.New()
	topicID := uuid.New()
	created := time.Date(2026, time.August, 25, 15, 4, 0, 0, time.UTC)

	ms.EXPECT().TopicBySlug(gomock.Any(), "intro").
		Return(&models.Topic{ID: topicID, Slug: "intro"}, nil)
	ms.EXPECT().SaveReply(gomock.Any(), gomock.Any()).
		Return(&models.Reply{
			ID:         uuid.New(),
			TopicID:    topicID,
			AuthorID:   author,
			Content:    "hi",
			CreatedAt:  created,
			AuthorName: "alice",
		}, nil)

	handler, cookie := withIdentity(h.NewReply,
		service.Identity{UserID: author, Username: "alice"})

	body := `{"reply":"hi","topic_slug":"intro"}`
	req := httptest.NewRequest(http.MethodPost, "/new-reply/", strings.NewReader(body))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		ID         string `json:"id"`
		AuthorName string `json:"author_name"`
		Content    string `json:"content"`
		Time       string `json:"time"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.Equal(t, "alice", resp.AuthorName)
	require.Equal(t, "hi", resp.Content)
	require.Equal(t, "Aug. 25, 2026, 3:04 p.m.", resp.Time)
}

// Битый JSON -> 400.
func TestHandlers_NewReply_BadJSON(t *testing.T) {
	h, _, ctrl := newHandlersWithMocks(t)
	defer ctrl.Finish()

	handler, cookie := withIdentity(h.NewReply,
		service.Identity{UserID: uuid.New(), Username: "alice"})

	req := httptest.NewRequest(http.MethodPost, "/new-reply/", strings.NewReader(`{bad`))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
