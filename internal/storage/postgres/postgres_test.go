package postgres

// Интеграционные тесты пакета postgres:
// - поднимают реальный PostgreSQL через testcontainers-go (postgres:16-alpine);
// - применяют миграции из ./migrations (0001_init.sql);
// - проверяют happy-path репозиториев, конфликты уникальности,
//   generic-выдачу ListObjects (пагинация/фильтры/аннотации/порядок).
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/storage"
)

// repoRootFromThisFile — корень репозитория относительно текущего файла,
// чтобы находить ./migrations независимо от рабочего каталога.
func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> подняться на 3 уровня до корня.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

func readMigration(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(repoRootFromThisFile(), "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

// startPostgres поднимает временный PostgreSQL, применяет миграции и
// возвращает хранилище с функцией очистки. Без GO_TEST_INTEGRATION — skip.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	// применяем миграции.
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, readMigration(t, "0001_init.sql"))
	require.NoError(t, err)

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

func mustUser(t *testing.T, st *Storage, username string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.SaveUser(context.Background(), u))
	return u
}

func mustCategory(t *testing.T, st *Storage, name, slug string) *models.Category {
	t.Helper()
	cat := &models.Category{ID: uuid.New(), Name: name, Description: name + " talk", Slug: slug}
	_, err := st.db.Exec(context.Background(),
		`INSERT INTO categories (id, name, description, slug) VALUES ($1, $2, $3, $4)`,
		cat.ID, cat.Name, cat.Description, cat.Slug)
	require.NoError(t, err)
	return cat
}

func mustTopic(t *testing.T, st *Storage, cat *models.Category, author *models.User, title, slug string) *models.Topic {
	t.Helper()
	now := time.Now().UTC()
	topic := &models.Topic{
		ID:         uuid.New(),
		Title:      title,
		Slug:       slug,
		Content:    "content of " + title,
		CategoryID: cat.ID,
		AuthorID:   author.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, st.SaveTopic(context.Background(), topic))
	return topic
}

// Happy-path: пользователь сохраняется и находится по имени и ID.
func TestIntegration_SaveUser_And_Lookups_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := mustUser(t, st, "alice")

	byName, err := st.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)
	require.Equal(t, u.Email, byName.Email)

	byID, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	_, err = st.UserByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Конфликт уникальности username -> ErrAlreadyExists.
func TestIntegration_SaveUser_UniqueViolation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	mustUser(t, st, "alice")

	dup := &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.ErrorIs(t, st.SaveUser(context.Background(), dup), storage.ErrAlreadyExists)
}

// Тема: сохранение, конфликт слага, чтение с аннотациями.
func TestIntegration_Topics_SaveAndBySlug(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	author := mustUser(t, st, "alice")
	cat := mustCategory(t, st, "General", "general")
	mustTopic(t, st, cat, author, "Hello", "hello")

	dup := &models.Topic{
		ID: uuid.New(), Title: "Other", Slug: "hello", Content: "x",
		CategoryID: cat.ID, AuthorID: author.ID,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.ErrorIs(t, st.SaveTopic(context.Background(), dup), storage.ErrAlreadyExists)

	got, err := st.TopicBySlug(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "Hello", got.Title)
	require.Equal(t, "alice", got.AuthorName)
	require.EqualValues(t, 0, got.RepliesCount)

	_, err = st.TopicBySlug(context.Background(), "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Ответ: генерация ID/времени, аннотация author_name, FK на тему.
func TestIntegration_SaveReply_OK_And_MissingTopic(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	author := mustUser(t, st, "alice")
	cat := mustCategory(t, st, "General", "general")
	topic := mustTopic(t, st, cat, author, "Hello", "hello")

	saved, err := st.SaveReply(context.Background(), &models.Reply{
		TopicID: topic.ID, AuthorID: author.ID, Content: "hi",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())
	require.Equal(t, "alice", saved.AuthorName)

	_, err = st.SaveReply(context.Background(), &models.Reply{
		TopicID: uuid.New(), AuthorID: author.ID, Content: "hi",
	})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Generic-выдача: пагинация LIMIT n+1, порядок, фильтры и аннотации.
func TestIntegration_ListObjects_Replies_Pagination(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	author := mustUser(t, st, "alice")
	cat := mustCategory(t, st, "General", "general")
	topic := mustTopic(t, st, cat, author, "Hello", "hello")
	other := mustTopic(t, st, cat, author, "Other", "other")

	for i := 0; i < 5; i++ {
		_, err := st.SaveReply(context.Background(), &models.Reply{
			TopicID: topic.ID, AuthorID: author.ID,
			Content: fmt.Sprintf("reply %d", i),
		})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond) // стабильный порядок created_at
	}
	_, err := st.SaveReply(context.Background(), &models.Reply{
		TopicID: other.ID, AuthorID: author.ID, Content: "noise",
	})
	require.NoError(t, err)

	q := storage.ListQuery{
		Model:              storage.ModelReply,
		Filters:            map[string]string{"topic__slug": "hello"},
		Page:               1,
		PerPage:            2,
		AnnotateAuthorName: true,
		WithCount:          true,
	}

	page1, err := st.ListObjects(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, page1.Objects, 2)
	require.True(t, page1.HasNext)
	require.Equal(t, "reply 0", page1.Objects[0]["content"])
	require.Equal(t, "alice", page1.Objects[0]["author_name"])
	require.NotNil(t, page1.Count)
	require.EqualValues(t, 5, *page1.Count)

	q.Page = 3
	page3, err := st.ListObjects(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, page3.Objects, 1)
	require.False(t, page3.HasNext)
	require.Equal(t, "reply 4", page3.Objects[0]["content"])
}

// Категории: ExcludeSlugs скрывает mytopics, порядок по имени.
func TestIntegration_ListObjects_Categories_ExcludeSlugs(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	mustCategory(t, st, "Zeta", "zeta")
	mustCategory(t, st, "Alpha", "alpha")
	// mytopics засеяна миграцией.

	page, err := st.ListObjects(context.Background(), storage.ListQuery{
		Model:        storage.ModelCategory,
		Filters:      map[string]string{},
		Page:         1,
		PerPage:      10,
		ExcludeSlugs: []string{"mytopics"},
	})
	require.NoError(t, err)
	require.Len(t, page.Objects, 2)
	require.Equal(t, "Alpha", page.Objects[0]["name"])
	require.Equal(t, "Zeta", page.Objects[1]["name"])
}

// Темы: фильтр по категории, аннотация replies_count, порядок новые-сверху.
func TestIntegration_ListObjects_Topics_WithCounts(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	author := mustUser(t, st, "alice")
	cat := mustCategory(t, st, "General", "general")
	first := mustTopic(t, st, cat, author, "First", "first")
	time.Sleep(5 * time.Millisecond)
	mustTopic(t, st, cat, author, "Second", "second")

	_, err := st.SaveReply(context.Background(), &models.Reply{
		TopicID: first.ID, AuthorID: author.ID, Content: "hi",
	})
	require.NoError(t, err)

	page, err := st.ListObjects(context.Background(), storage.ListQuery{
		Model:              storage.ModelTopic,
		Filters:            map[string]string{"category__slug": "general"},
		Page:               1,
		PerPage:            10,
		AnnotateAuthorName: true,
		RepliesCount:       true,
	})
	require.NoError(t, err)
	require.Len(t, page.Objects, 2)
	require.Equal(t, "Second", page.Objects[0]["title"])
	require.Equal(t, "First", page.Objects[1]["title"])
	require.EqualValues(t, 1, page.Objects[1]["replies_count"])
	require.Equal(t, "alice", page.Objects[0]["author_name"])
}
