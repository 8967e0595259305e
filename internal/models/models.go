// Package models содержит доменные сущности форума.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User — зарегистрированный пользователь форума.
// PasswordHash и Email никогда не попадают в выдачу /load-objects/.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Category — раздел форума. Slug уникален и генерируется из Name,
// если не задан явно.
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	Slug        string
}

// Topic — тема внутри категории.
// AuthorName и RepliesCount — аннотации выдачи (join/count), в БД не хранятся.
type Topic struct {
	ID         uuid.UUID
	Title      string
	Slug       string
	Content    string
	CategoryID uuid.UUID
	AuthorID   uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time

	AuthorName   string
	RepliesCount int64
}

// Reply — ответ в теме.
// AuthorName — аннотация выдачи (join), в БД не хранится.
type Reply struct {
	ID        uuid.UUID
	TopicID   uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	CreatedAt time.Time

	AuthorName string
}

// Object — плоское представление одной записи в generic-выдаче
// /load-objects/: колонки модели минус чувствительные поля, плюс
// запрошенные аннотации. Ключи соответствуют именам полей БД.
type Object map[string]any

// ObjectPage — страница generic-выдачи.
// HasNext — признак наличия следующей страницы при том же фильтре.
// Count заполняется только по явному запросу (count=true) и несёт
// общее число записей под фильтром.
type ObjectPage struct {
	Objects []Object
	HasNext bool
	Count   *int64
}
