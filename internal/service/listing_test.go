package service

// Тесты generic-выдачи (internal/service/listing.go).
//
//  Проверяем:
//  - белые списки моделей/фильтров/аннотаций;
//  - валидацию page/per_page и потолок MaxPerPage;
//  - логику псевдокатегории mytopics (аноним/авторизованный);
//  - применение format_function к записям;
//  - маппинг ошибок storage -> service.
//
// Подготовка окружения:
//   go test ./internal/service -v -race -count=1

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-forum/internal/config"
	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/storage"
	"github.com/pribylovaa/go-forum/internal/storage/mocks"
)

func testConfig() config.Config {
	return config.Config{
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

func newServiceWithMocks(t *testing.T) (*Service, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	s := New(ms, nil, nil, testConfig())
	return s, ms, ctrl
}

// Белый список моделей: неизвестная модель -> ErrInvalidArgument.
func TestService_ListObjects_DisallowedModel(t *testing.T) {
	s, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model: "User", Page: 1, PerPage: 7,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Валидация: page/per_page < 1 -> ErrInvalidArgument.
func TestService_ListObjects_BadPagination(t *testing.T) {
	s, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model: storage.ModelReply, Page: 0, PerPage: 7,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.ListObjects(context.Background(), ListObjectsInput{
		Model: storage.ModelReply, Page: 1, PerPage: 0,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Фильтры вне белого списка молча отбрасываются, разрешённые проходят.
func TestService_ListObjects_FilterWhitelist(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
			require.Equal(t, map[string]string{"topic__slug": "intro"}, q.Filters)
			return &models.ObjectPage{Objects: []models.Object{}}, nil
		})

	_, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model:   storage.ModelReply,
		Page:    1,
		PerPage: 7,
		Filters: map[string]string{
			"topic__slug":   "intro",
			"password_hash": "x", // не в белом списке
			"id__gt":        "1", // не в белом списке
		},
	})
	require.NoError(t, err)
}

// PerPage ограничивается сверху MaxPerPage.
func TestService_ListObjects_PerPageClamp(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
			require.Equal(t, 100, q.PerPage)
			return &models.ObjectPage{}, nil
		})

	_, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model: storage.ModelCategory, Page: 1, PerPage: 5000, Authenticated: true,
	})
	require.NoError(t, err)
}

// related_counts: "replies" включает RepliesCount, неизвестное поле -> 400.
func TestService_ListObjects_RelatedCounts(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
			require.True(t, q.RepliesCount)
			return &models.ObjectPage{}, nil
		})

	_, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model: storage.ModelTopic, Page: 1, PerPage: 7, RelatedCounts: "replies",
	})
	require.NoError(t, err)

	_, err = s.ListObjects(context.Background(), ListObjectsInput{
		Model: storage.ModelTopic, Page: 1, PerPage: 7, RelatedCounts: "secrets",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Аноним не видит mytopics в списке категорий.
func TestService_ListObjects_AnonymousHidesMyTopics(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
			require.Equal(t, []string{MyTopicsSlug}, q.ExcludeSlugs)
			return &models.ObjectPage{}, nil
		})

	_, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model: storage.ModelCategory, Page: 1, PerPage: 7,
	})
	require.NoError(t, err)
}

// mytopics: для авторизованного фильтр раскрывается в author_id,
// для анонима — ErrInvalidArgument.
func TestService_ListObjects_MyTopicsFilter(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	caller := uuid.New()
	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q storage.ListQuery) (*models.ObjectPage, error) {
			require.Equal(t, map[string]string{"author_id": caller.String()}, q.Filters)
			return &models.ObjectPage{}, nil
		})

	_, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model:         storage.ModelTopic,
		Page:          1,
		PerPage:       7,
		Filters:       map[string]string{"category__slug": MyTopicsSlug},
		Authenticated: true,
		CallerID:      caller,
	})
	require.NoError(t, err)

	_, err = s.ListObjects(context.Background(), ListObjectsInput{
		Model:   storage.ModelTopic,
		Page:    1,
		PerPage: 7,
		Filters: map[string]string{"category__slug": MyTopicsSlug},
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// format_function=datetime_format переписывает created_at в строку.
func TestService_ListObjects_DatetimeFormat(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	created := time.Date(2026, time.August, 25, 15, 4, 0, 0, time.UTC)
	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		Return(&models.ObjectPage{
			Objects: []models.Object{{"id": "1", "created_at": created}},
			HasNext: false,
		}, nil)

	page, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model:          storage.ModelReply,
		Page:           1,
		PerPage:        7,
		FormatFunction: "datetime_format",
		FormatArgs:     []string{"created_at"},
	})
	require.NoError(t, err)
	require.Equal(t, "Aug. 25, 2026, 3:04 p.m.", page.Objects[0]["created_at"])
}

// Маппинг: произвольная ошибка стораджа -> ErrInternal.
func TestService_ListObjects_StorageError(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		ListObjects(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("boom"))

	_, err := s.ListObjects(context.Background(), ListObjectsInput{
		Model: storage.ModelCategory, Page: 1, PerPage: 7, Authenticated: true,
	})
	require.ErrorIs(t, err, ErrInternal)
}
