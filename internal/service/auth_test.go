package service

// Тесты регистрации/логина и сессионных токенов
// (internal/service/auth.go, session.go).
//
//  Проверяем:
//  - политики username/email/password;
//  - маппинг конфликтов уникальности -> ErrUsernameTaken;
//  - неразличимость "нет пользователя" и "не тот пароль";
//  - round-trip выпуска и проверки сессии;
//  - истёкший/битый токен.

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-forum/internal/models"
	"github.com/pribylovaa/go-forum/internal/storage"
)

// Политики: короткое имя, запрещённые символы, битый email, слабый пароль.
func TestService_RegisterUser_ValidationErrors(t *testing.T) {
	s, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.RegisterUser(context.Background(), RegisterInput{
		Username: "ab", Email: "a@b.cc", Password: "password1",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.RegisterUser(context.Background(), RegisterInput{
		Username: "has space", Email: "a@b.cc", Password: "password1",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.RegisterUser(context.Background(), RegisterInput{
		Username: "alice", Email: "not-an-email", Password: "password1",
	})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = s.RegisterUser(context.Background(), RegisterInput{
		Username: "alice", Email: "a@b.cc", Password: "short1",
	})
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = s.RegisterUser(context.Background(), RegisterInput{
		Username: "alice", Email: "a@b.cc", Password: "passwordonly",
	})
	require.ErrorIs(t, err, ErrWeakPassword)
}

// Маппинг: storage.ErrAlreadyExists -> ErrUsernameTaken.
func TestService_RegisterUser_UsernameTaken(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		Return(storage.ErrAlreadyExists)

	_, err := s.RegisterUser(context.Background(), RegisterInput{
		Username: "alice", Email: "a@b.cc", Password: "password1",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

// Happy-path: пароль хранится bcrypt-хешем, не открытым текстом.
func TestService_RegisterUser_OK(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user *models.User) error {
			require.NotEqual(t, "password1", user.PasswordHash)
			require.NoError(t, bcrypt.CompareHashAndPassword(
				[]byte(user.PasswordHash), []byte("password1")))
			return nil
		})

	user, err := s.RegisterUser(context.Background(), RegisterInput{
		Username: "alice", Email: "a@b.cc", Password: "password1",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.NotEqual(t, uuid.Nil, user.ID)
}

// Логин: нет пользователя и неверный пароль дают один и тот же сентинел.
func TestService_LoginUser_InvalidCredentials(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().UserByUsername(gomock.Any(), "ghost").
		Return(nil, storage.ErrNotFound)

	_, err := s.LoginUser(context.Background(), "ghost", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct1"), bcrypt.MinCost)
	ms.EXPECT().UserByUsername(gomock.Any(), "alice").
		Return(&models.User{ID: uuid.New(), Username: "alice", PasswordHash: string(hash)}, nil)

	_, err = s.LoginUser(context.Background(), "alice", "wrong-pass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

// Happy-path логина.
func TestService_LoginUser_OK(t *testing.T) {
	s, ms, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct1"), bcrypt.MinCost)
	want := &models.User{ID: uuid.New(), Username: "alice", PasswordHash: string(hash)}
	ms.EXPECT().UserByUsername(gomock.Any(), "alice").Return(want, nil)

	got, err := s.LoginUser(context.Background(), "alice", "correct1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// Round-trip: выпущенная сессия валидируется и несёт личность.
func TestService_Session_RoundTrip(t *testing.T) {
	s, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	token, err := s.IssueSession(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := s.ValidateSession(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, "alice", identity.Username)
}

// Истёкший токен -> ErrTokenExpired.
func TestService_Session_Expired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := testConfig()
	cfg.Auth.SessionTTL = -time.Minute
	s := New(nil, nil, nil, cfg)

	token, err := s.IssueSession(context.Background(), &models.User{ID: uuid.New(), Username: "alice"})
	require.NoError(t, err)

	_, err = s.ValidateSession(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

// Мусор вместо токена -> ErrInvalidToken.
func TestService_Session_Garbage(t *testing.T) {
	s, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.ValidateSession(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
