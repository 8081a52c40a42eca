// Package users реализует HTTP-обработчики суперадмина для управления
// учетными записями: список, смена роли и плана, удаление.
package users

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

	"github.com/magabrotheeeer/crm-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// UpdateRoleRequest — входные данные для смены роли.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin superadmin"`
}

// UpdatePlanRequest — входные данные для смены плана.
type UpdatePlanRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// Service описывает интерфейс бизнес-логики управления пользователями.
type Service interface {
	List(ctx context.Context) ([]*models.UserOverview, error)
	ListAdmins(ctx context.Context) ([]*models.AdminSummary, error)
	UpdateRole(ctx context.Context, actorID, userID int64, role string) error
	UpdatePlan(ctx context.Context, actorID, userID int64, plan string) error
	Delete(ctx context.Context, actorID, userID int64) error
}

// Handler управляет HTTP-запросами суперадмина к учетным записям.
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

func userID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func actorID(r *http.Request) int64 {
	if claims, ok := middlewarectx.SessionFromContext(r.Context()); ok {
		return claims.UserID
	}
	return 0
}

// List godoc
// @Summary Список пользователей
// @Description Возвращает всех пользователей со статусом и счетчиком созданных ими записей.
// @Tags SuperadminUsers
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список пользователей"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.users.list")

	users, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load users"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(users))
}

// ListAdmins godoc
// @Summary Список админов
// @Description Возвращает краткие карточки всех пользователей с ролью admin.
// @Tags SuperadminUsers
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список админов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/admins [get]
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.users.listadmins")

	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		log.Error("failed to list admins", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load admins"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(admins))
}

// UpdateRole godoc
// @Summary Сменить роль пользователя
// @Description Меняет роль пользователя. Действующие токены пользователя сохраняют старые права до следующего входа.
// @Tags SuperadminUsers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body UpdateRoleRequest true "Новая роль"
// @Success 200 {object} response.Response "Роль обновлена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/users/{id}/role [patch]
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.users.updaterole")

	id, err := userID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	var req UpdateRoleRequest
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

	err = h.service.UpdateRole(r.Context(), actorID(r), id, req.Role)
	if errors.Is(err, repository.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to update role", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update role"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "role updated"}))
}

// UpdatePlan godoc
// @Summary Сменить план пользователя
// @Description Меняет тарифный план пользователя. Действующие токены сохраняют старые права до следующего входа.
// @Tags SuperadminUsers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body UpdatePlanRequest true "Идентификатор плана"
// @Success 200 {object} response.Response "План обновлен"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/users/{id}/plan [patch]
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.users.updateplan")

	id, err := userID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	var req UpdatePlanRequest
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

	err = h.service.UpdatePlan(r.Context(), actorID(r), id, req.Plan)
	if errors.Is(err, repository.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to update plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update plan"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "plan updated"}))
}

// Delete godoc
// @Summary Удалить пользователя
// @Description Удаляет учетную запись. Действие фиксируется в журнале активности.
// @Tags SuperadminUsers
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response "Пользователь удален"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.users.delete")

	id, err := userID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	err = h.service.Delete(r.Context(), actorID(r), id)
	if errors.Is(err, repository.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete user"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "user deleted"}))
}
