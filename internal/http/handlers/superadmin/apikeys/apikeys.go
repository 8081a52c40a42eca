// Package apikeys реализует HTTP-обработчики суперадмина для выпуска,
// просмотра и отзыва API-ключей.
package apikeys

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// CreateRequest — входные данные для выпуска именованного ключа.
type CreateRequest struct {
	UserID      int64    `json:"user_id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,oneof=read write delete"`
}

// Service описывает интерфейс бизнес-логики API-ключей для суперадмина.
type Service interface {
	Generate(ctx context.Context, userID int64, name, description string, perms []string) (string, error)
	List(ctx context.Context) ([]*models.APIKeyOverview, error)
	Revoke(ctx context.Context, id int64) error
}

// Handler управляет HTTP-запросами суперадмина к API-ключам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Список API-ключей
// @Description Возвращает все ключи с маскированными секретами и данными владельцев.
// @Tags SuperadminAPIKeys
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список ключей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/apikeys [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.apikeys.list")

	keys, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list api keys", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load api keys"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(keys))
}

// Create godoc
// @Summary Выпустить именованный API-ключ
// @Description Выпускает ключ для указанного пользователя с набором прав read/write/delete. Секрет возвращается ровно один раз.
// @Tags SuperadminAPIKeys
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body CreateRequest true "Владелец, название и права ключа"
// @Success 200 {object} response.Response "Секрет ключа"
// @Failure 409 {object} response.ErrorResponse "У пользователя уже есть активный ключ"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/apikeys [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.apikeys.create")

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	secret, err := h.service.Generate(r.Context(), req.UserID, req.Name, req.Description, req.Permissions)
	if errors.Is(err, services.ErrActiveKeyExists) {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("active api key already exists"))
		return
	}
	if err != nil {
		log.Error("failed to create api key", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create api key"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"api_key": secret,
		"message": "store this key securely, it will not be shown again",
	}))
}

// Revoke godoc
// @Summary Отозвать API-ключ
// @Description Переводит ключ в статус revoked. Запись сохраняется для истории использования.
// @Tags SuperadminAPIKeys
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID ключа"
// @Success 200 {object} response.Response "Ключ отозван"
// @Failure 404 {object} response.ErrorResponse "Ключ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/apikeys/{id}/revoke [post]
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.apikeys.revoke")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid api key id"))
		return
	}

	err = h.service.Revoke(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("api key not found"))
		return
	}
	if err != nil {
		log.Error("failed to revoke api key", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to revoke api key"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "api key revoked"}))
}
