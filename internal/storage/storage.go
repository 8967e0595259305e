package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-forum/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности (username/slug).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument — некорректные параметры запроса к хранилищу.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFoundAvatar — объект аватара не найден в бакете.
	ErrNotFoundAvatar = errors.New("avatar not found")
)

// Допустимые значения ListQuery.Model.
const (
	ModelCategory = "Category"
	ModelTopic    = "Topic"
	ModelReply    = "Reply"
)

// ListQuery — параметры generic-выдачи /load-objects/ после валидации
// сервисным слоем. Filters содержит только разрешённые ключи
// (topic__slug, category__slug, author_id).
type ListQuery struct {
	Model   string
	Filters map[string]string
	// Страничная пагинация: Page >= 1, PerPage >= 1.
	Page    int
	PerPage int
	// AnnotateAuthorName добавляет в каждую запись author_name (join users).
	AnnotateAuthorName bool
	// RepliesCount добавляет replies_count (count по прямым ответам).
	RepliesCount bool
	// WithCount добавляет в страницу общее число записей под фильтром.
	WithCount bool
	// ExcludeSlugs — слаги, скрываемые из выдачи (только Model=Category).
	ExcludeSlugs []string
}

// Storage описывает операции форума над реляционным хранилищем.
type Storage interface {
	// SaveUser создает пользователя. При конфликте username/email — ErrAlreadyExists.
	SaveUser(ctx context.Context, user *models.User) error

	// UserByUsername возвращает пользователя по имени. Если нет — ErrNotFound.
	UserByUsername(ctx context.Context, username string) (*models.User, error)

	// UserByID возвращает пользователя по идентификатору. Если нет — ErrNotFound.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// UpdateAvatarURL сохраняет публичный URL аватара. Если пользователя нет — ErrNotFound.
	UpdateAvatarURL(ctx context.Context, id uuid.UUID, avatarURL string) error

	// CategoryBySlug возвращает категорию по слагу. Если нет — ErrNotFound.
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)

	// SaveTopic создает тему. При конфликте slug — ErrAlreadyExists.
	SaveTopic(ctx context.Context, topic *models.Topic) error

	// TopicBySlug возвращает тему по слагу вместе с аннотациями
	// author_name/replies_count. Если нет — ErrNotFound.
	TopicBySlug(ctx context.Context, slug string) (*models.Topic, error)

	// SaveReply создает ответ и возвращает его с проставленными ID/CreatedAt.
	// Если тема не существует — ErrNotFound.
	SaveReply(ctx context.Context, reply *models.Reply) (*models.Reply, error)

	// ListObjects возвращает страницу записей по провалидированному запросу.
	// Порядок фиксирован на модель; HasNext вычисляется на этой же выборке.
	ListObjects(ctx context.Context, q ListQuery) (*models.ObjectPage, error)

	// Close закрывает соединения/ресурсы хранилища.
	Close()
}

// UploadInfo — параметры presigned-загрузки аватара.
type UploadInfo struct {
	UploadURL      string
	AvatarKey      string
	Expires        time.Duration
	RequiredHeader map[string]string
}

// AvatarStorage описывает объектное хранилище аватаров.
type AvatarStorage interface {
	// AvatarUploadURL выдаёт presigned PUT URL под ключ avatars/<userID>/<uuid>.<ext>.
	// Неподходящий contentType/contentLength — ErrInvalidArgument.
	AvatarUploadURL(ctx context.Context, userID uuid.UUID, contentType string, contentLength int64) (*UploadInfo, error)

	// CheckAvatarUpload подтверждает загрузку по ключу и возвращает публичный URL.
	// Отсутствие объекта — ErrNotFoundAvatar; нарушение ограничений — ErrInvalidArgument.
	CheckAvatarUpload(ctx context.Context, userID uuid.UUID, key string) (string, error)
}
