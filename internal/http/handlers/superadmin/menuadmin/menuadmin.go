// Package menuadmin реализует HTTP-обработчики суперадмина для управления
// пунктами навигационного меню.
package menuadmin

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

// Request — входные данные для создания или обновления пункта меню.
type Request struct {
	Title      string  `json:"title" validate:"required"`
	Path       *string `json:"path"`
	Icon       string  `json:"icon"`
	Permission string  `json:"permission" validate:"required"`
	Order      int     `json:"order"`
	Parent     *int64  `json:"parent"`
}

// Service описывает интерфейс бизнес-логики управления меню.
type Service interface {
	ListAll(ctx context.Context) ([]*models.MenuItem, error)
	Create(ctx context.Context, item models.MenuItem) (int64, error)
	Update(ctx context.Context, id int64, item models.MenuItem) error
	Delete(ctx context.Context, id int64) error
}

// Handler управляет HTTP-запросами суперадмина к пунктам меню.
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

func (r Request) toModel() models.MenuItem {
	return models.MenuItem{
		Title:      r.Title,
		Path:       r.Path,
		Icon:       r.Icon,
		Permission: r.Permission,
		Order:      r.Order,
		Parent:     r.Parent,
	}
}

// List godoc
// @Summary Полный список пунктов меню
// @Description Возвращает все пункты меню без фильтрации по правам — для экрана управления.
// @Tags SuperadminMenu
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список пунктов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/menu [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.menuadmin.list")

	items, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list menu items", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load menu items"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(items))
}

// Create godoc
// @Summary Создать пункт меню
// @Description Создает пункт меню и сбрасывает кеш меню.
// @Tags SuperadminMenu
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные пункта"
// @Success 200 {object} response.Response "ID созданного пункта"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/menu [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.menuadmin.create")

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

	id, err := h.service.Create(r.Context(), req.toModel())
	if err != nil {
		log.Error("failed to create menu item", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create menu item"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": id}))
}

// Update godoc
// @Summary Обновить пункт меню
// @Description Обновляет пункт меню и сбрасывает кеш меню.
// @Tags SuperadminMenu
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пункта"
// @Param request body Request true "Данные пункта"
// @Success 200 {object} response.Response "Пункт обновлен"
// @Failure 404 {object} response.ErrorResponse "Пункт не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/menu/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.menuadmin.update")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid menu item id"))
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

	err = h.service.Update(r.Context(), id, req.toModel())
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("menu item not found"))
		return
	}
	if err != nil {
		log.Error("failed to update menu item", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update menu item"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "menu item updated"}))
}

// Delete godoc
// @Summary Удалить пункт меню
// @Description Удаляет пункт меню. Пункт с дочерними элементами удалить нельзя.
// @Tags SuperadminMenu
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пункта"
// @Success 200 {object} response.Response "Пункт удален"
// @Failure 400 {object} response.ErrorResponse "У пункта есть дочерние элементы"
// @Failure 404 {object} response.ErrorResponse "Пункт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/menu/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.menuadmin.delete")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid menu item id"))
		return
	}

	err = h.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, services.ErrMenuHasChildren):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("cannot delete item with children"))
		return
	case errors.Is(err, services.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("menu item not found"))
		return
	case err != nil:
		log.Error("failed to delete menu item", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete menu item"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"message": "menu item deleted"}))
}
