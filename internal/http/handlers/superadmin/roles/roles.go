// Package roles реализует HTTP-обработчики суперадмина для управления
// ролями и их наборами разрешений.
package roles

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

// UpdatePermissionsRequest — входные данные для замены набора разрешений роли.
type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

// Service описывает интерфейс бизнес-логики управления ролями.
type Service interface {
	List(ctx context.Context) ([]*models.Role, error)
	UpdatePermissions(ctx context.Context, id int64, perms []string) (*models.Role, error)
	ListPermissions(ctx context.Context) ([]string, error)
}

// Handler управляет HTTP-запросами суперадмина к ролям.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Список ролей
// @Description Возвращает роли admin и user с их текущими наборами разрешений.
// @Tags SuperadminRoles
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список ролей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/roles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.roles.list")

	roles, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list roles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load roles"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(roles))
}

// UpdatePermissions godoc
// @Summary Заменить разрешения роли
// @Description Полностью заменяет набор разрешений роли. Выданные ранее токены сохраняют старые права до следующего входа.
// @Tags SuperadminRoles
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID роли"
// @Param request body UpdatePermissionsRequest true "Новый набор разрешений"
// @Success 200 {object} response.Response "Обновленная роль"
// @Failure 404 {object} response.ErrorResponse "Роль не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/roles/{id}/permissions [put]
func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.roles.updatepermissions")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid role id"))
		return
	}

	var req UpdatePermissionsRequest
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

	role, err := h.service.UpdatePermissions(r.Context(), id, req.Permissions)
	if errors.Is(err, services.ErrRoleNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("role not found"))
		return
	}
	if err != nil {
		log.Error("failed to update role permissions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update role"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(role))
}

// ListPermissions godoc
// @Summary Каталог разрешений
// @Description Возвращает полный список известных системе строк-разрешений из пунктов меню.
// @Tags SuperadminRoles
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список разрешений"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/permissions [get]
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.roles.listpermissions")

	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		log.Error("failed to list permissions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load permissions"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(perms))
}
