// Package auditlogs реализует HTTP-обработчики суперадмина для чтения
// журналов аудита: активность, попытки входа, обращения к публичному API.
package auditlogs

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// Service описывает интерфейс чтения журналов аудита.
type Service interface {
	ActivityLogs(ctx context.Context) ([]*models.ActivityLog, error)
	LoginAttempts(ctx context.Context) ([]*models.LoginAttempt, error)
	APIUsage(ctx context.Context) ([]*models.APIUsageLog, error)
}

// Handler управляет HTTP-запросами суперадмина к журналам аудита.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Activity godoc
// @Summary Журнал активности
// @Description Возвращает последние записи о привилегированных действиях с данными актора и цели.
// @Tags SuperadminLogs
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Журнал активности"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/logs/activity [get]
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.auditlogs.activity")

	entries, err := h.service.ActivityLogs(r.Context())
	if err != nil {
		log.Error("failed to list activity logs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load activity logs"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(entries))
}

// LoginAttempts godoc
// @Summary Журнал попыток входа
// @Description Возвращает последние попытки входа, включая попытки по несуществующим email.
// @Tags SuperadminLogs
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Журнал попыток входа"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/logs/login-attempts [get]
func (h *Handler) LoginAttempts(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.auditlogs.loginattempts")

	entries, err := h.service.LoginAttempts(r.Context())
	if err != nil {
		log.Error("failed to list login attempts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load login attempts"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(entries))
}

// APIUsage godoc
// @Summary Журнал обращений к публичному API
// @Description Возвращает последние обращения по API-ключам с данными ключа и владельца.
// @Tags SuperadminLogs
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Журнал обращений"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/superadmin/logs/api-usage [get]
func (h *Handler) APIUsage(w http.ResponseWriter, r *http.Request) {
	log := h.opLog(r, "handlers.superadmin.auditlogs.apiusage")

	entries, err := h.service.APIUsage(r.Context())
	if err != nil {
		log.Error("failed to list api usage logs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load api usage logs"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(entries))
}
