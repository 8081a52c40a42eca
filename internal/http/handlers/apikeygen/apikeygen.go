// Package apikeygen реализует HTTP-обработчик выпуска API-ключа для
// текущего пользователя. Секрет возвращается ровно один раз.
package apikeygen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Request — входные данные для выпуска ключа. Все поля опциональны.
type Request struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// Service описывает интерфейс бизнес-логики выпуска ключей.
type Service interface {
	Generate(ctx context.Context, userID int64, name, description string, perms []string) (string, error)
}

// Handler управляет HTTP-запросами на выпуск ключа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выпустить API-ключ
// @Description Выпускает API-ключ для текущего пользователя. Секрет возвращается один раз; повторный выпуск при живом активном ключе отклоняется.
// @Tags APIKeys
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request false "Название и описание ключа"
// @Success 200 {object} map[string]any "Секрет ключа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Активный ключ уже существует"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/admin/api-keys/generate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.apikeygen"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claims, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	secret, err := h.service.Generate(r.Context(), claims.UserID, req.Name, req.Description, req.Permissions)
	if errors.Is(err, services.ErrActiveKeyExists) {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("active api key already exists"))
		return
	}
	if err != nil {
		log.Error("failed to generate api key", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to generate api key"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"api_key": secret,
		"message": "store this key securely, it will not be shown again",
	}))
}
