// Package menu реализует HTTP-обработчик выдачи навигационного меню,
// отфильтрованного по правам из токена текущего пользователя.
package menu

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// Service описывает интерфейс построения дерева меню.
type Service interface {
	Tree(ctx context.Context, perms []string) ([]*models.MenuNode, error)
}

// Handler управляет HTTP-запросами на выдачу меню.
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
// @Summary Получить меню пользователя
// @Description Возвращает дерево меню, отфильтрованное по правам из токена. Права зафиксированы на момент входа.
// @Tags Menu
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Дерево меню"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/menu [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.menu"
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

	tree, err := h.service.Tree(r.Context(), claims.Permissions)
	if err != nil {
		log.Error("failed to build menu tree", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load menu"))
		return
	}
	if tree == nil {
		tree = []*models.MenuNode{}
	}

	render.JSON(w, r, response.StatusOKWithData(tree))
}
