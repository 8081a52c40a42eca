// Package plans реализует HTTP-обработчики суперадмина для управления
// тарифными планами подписки.
package plans

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
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Request — входные данные для создания или обновления плана.
type Request struct {
	Name        string            `json:"name" validate:"required"`
	Identifier  string            `json:"identifier" validate:"required"`
	Prices      models.PlanPrices `json:"prices" validate:"required"`
	Features    []string          `json:"features"`
	IsPublic    bool              `json:"is_public"`
	Permissions []string          `json:"permissions"`
}

// Service описывает интерфейс бизнес-логики управления планами.
type Service interface {
	List(ctx context.Context) ([]*models.Plan, error)
	Create(ctx context.Context, actorID int64, plan models.Plan) (int64, error)
	Update(ctx context.Context, actorID, id int64, plan models.Plan) (*models.Plan, error)
	Delete(ctx context.Context, id int64) error
}

// Handler управляет HTTP-запросами суперадмина к тарифным планам.
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

func actorID(r *http.Request) int64 {
	if claims, ok := middlewarectx.SessionFromContext(r.Context()); ok {
		return claims.UserID
	}
	return 0
}

func (r Request) toModel() models.Plan {
	return models.Plan{
		Name:        r.Name,
		Identifier:  r.Identifier,
		Prices:      r.Prices,
		Features:    r.Features,
		IsPublic:    r.IsPublic,
		Permissions: r.Permissions,
	}
}

// List godoc
// @Summary Список планов
// @Description Возвращает все тарифные планы с ценами и разрешениями.
// @Tags SuperadminPlans
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список планов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/plans [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.plans.list")

	plans, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load plans"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(plans))
}

// Create godoc
// @Summary Создать план
// @Description Создает новый тарифный план. Действие фиксируется в журнале активности.
// @Tags SuperadminPlans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные плана"
// @Success 200 {object} response.Response "ID созданного плана"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/plans [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.plans.create")

	var req Request
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

	id, err := h.service.Create(r.Context(), actorID(r), req.toModel())
	if err != nil {
		log.Error("failed to create plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create plan"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": id}))
}

// Update godoc
// @Summary Обновить план
// @Description Обновляет тарифный план и возвращает его новое состояние.
// @Tags SuperadminPlans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID плана"
// @Param request body Request true "Данные плана"
// @Success 200 {object} response.Response "Обновленный план"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/plans/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.plans.update")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan id"))
		return
	}

	var req Request
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

	plan, err := h.service.Update(r.Context(), actorID(r), id, req.toModel())
	if errors.Is(err, services.ErrPlanNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}
	if err != nil {
		log.Error("failed to update plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update plan"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(plan))
}

// Delete godoc
// @Summary Удалить план
// @Description Удаляет тарифный план.
// @Tags SuperadminPlans
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID плана"
// @Success 200 {object} response.Response "План удален"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/plans/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.plans.delete")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan id"))
		return
	}

	err = h.service.Delete(r.Context(), id)
	if errors.Is(err, services.ErrPlanNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete plan"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "plan deleted"}))
}
