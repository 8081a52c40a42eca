// Package publicapi реализует обработчики публичного API, доступного
// по статическому API-ключу.
package publicapi

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

// ContactsService описывает интерфейс выдачи контактов владельца ключа.
type ContactsService interface {
	ListContacts(ctx context.Context, creatorID int64) ([]*models.Contact, error)
}

// ContactsHandler отдает контакты, созданные владельцем API-ключа.
type ContactsHandler struct {
	log     *slog.Logger
	service ContactsService
}

// NewContactsHandler создает новый ContactsHandler.
func NewContactsHandler(log *slog.Logger, service ContactsService) *ContactsHandler {
	return &ContactsHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Контакты владельца ключа
// @Description Возвращает контакты, созданные владельцем API-ключа. Требуется флаг read.
// @Tags PublicAPI
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} response.Response "Список контактов"
// @Failure 401 {object} response.ErrorResponse "Ключ не передан"
// @Failure 403 {object} response.ErrorResponse "Ключ недействителен или не несет флаг read"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/v1/contacts [get]
func (h *ContactsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", "handlers.publicapi.contacts.servehttp"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key, ok := middlewarectx.APIKeyFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("api key required"))
		return
	}
	if !key.HasPermission(models.APIKeyPermissionRead) {
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("api key does not allow read"))
		return
	}

	contacts, err := h.service.ListContacts(r.Context(), key.UserID)
	if err != nil {
		log.Error("failed to list contacts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load contacts"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(contacts))
}
