// service содержит бизнес-логику forum-service.
package service

import (
	"errors"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pribylovaa/go-forum/internal/cache"
	"github.com/pribylovaa/go-forum/internal/config"
	"github.com/pribylovaa/go-forum/internal/storage"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists — конфликт уникальности.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUsernameTaken — имя пользователя занято.
	ErrUsernameTaken = errors.New("username taken")
	// ErrInvalidEmail — некорректный email при регистрации.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrWeakPassword — пароль не проходит политику сложности.
	ErrWeakPassword = errors.New("weak password")
	// ErrInvalidCredentials — неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — битый/чужой сессионный токен.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — сессионный токен истёк.
	ErrTokenExpired = errors.New("token expired")
	// ErrForbiddenCategory — операция запрещена для псевдокатегории mytopics.
	ErrForbiddenCategory = errors.New("forbidden category")
	// ErrRateLimited — превышен лимит публикаций в окне.
	ErrRateLimited = errors.New("rate limited")
	// ErrAvatarsDisabled — объектное хранилище аватаров не сконфигурировано.
	ErrAvatarsDisabled = errors.New("avatars disabled")
	// ErrInternal — внутренняя ошибка (стораж/БД/контекст/и т.д.).
	ErrInternal = errors.New("internal")
)

// MyTopicsSlug — слаг псевдокатегории «мои темы»: анонимам не показывается,
// для авторизованных раскрывается в фильтр по author_id.
const MyTopicsSlug = "mytopics"

// Service — бизнес-логика forum-service.
type Service struct {
	storage   storage.Storage
	avatars   storage.AvatarStorage
	limiter   cache.ReplyLimiter
	cfg       config.Config
	sanitizer *bluemonday.Policy
}

// New создает новый экземпляр Service.
// avatars и limiter могут быть nil: аватары отключены, лимит не применяется.
func New(st storage.Storage, avatars storage.AvatarStorage, limiter cache.ReplyLimiter, cfg config.Config) *Service {
	return &Service{
		storage:   st,
		avatars:   avatars,
		limiter:   limiter,
		cfg:       cfg,
		sanitizer: bluemonday.UGCPolicy(),
	}
}
