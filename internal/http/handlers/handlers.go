// handlers реализует HTTP-слой forum-service поверх бизнес-логики
// internal/service: generic-выдача /load-objects/, мутации тем/ответов,
// регистрация и сессии, аватары и server-rendered страницы.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-forum/internal/config"
	"github.com/pribylovaa/go-forum/internal/service"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	Service *service.Service
	Cfg     *config.Config
}

func New(svc *service.Service, cfg *config.Config) *Handlers {
	return &Handlers{Service: svc, Cfg: cfg}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — локальная ошибка парсинга -> сервисный сентинел,
// чтобы errors.WriteError отдал 400.
func errInvalidArgument() error {
	return fmt.Errorf("handlers: %w", service.ErrInvalidArgument)
}

// errUnauthenticated — запрос без валидной сессии -> 401.
func errUnauthenticated() error {
	return fmt.Errorf("handlers: %w", service.ErrInvalidToken)
}
