// Package verify реализует HTTP-обработчик подтверждения email по
// одноразовому токену из письма.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Service описывает интерфейс бизнес-логики подтверждения email.
type Service interface {
	Verify(ctx context.Context, verificationToken string) error
}

// Handler управляет HTTP-запросами на подтверждение email.
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
// @Summary Подтвердить email
// @Description Подтверждает email по одноразовому токену из письма. Повторное использование токена невозможно.
// @Tags Auth
// @Produce  json
// @Param token path string true "Одноразовый токен подтверждения"
// @Success 200 {object} map[string]any "Email подтвержден"
// @Failure 400 {object} response.ErrorResponse "Неизвестный или использованный токен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/auth/verify/{token} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := chi.URLParam(r, "token")
	if token == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("verification token required"))
		return
	}

	err := h.service.Verify(r.Context(), token)
	if errors.Is(err, services.ErrTokenInvalid) {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid or already used token"))
		return
	}
	if err != nil {
		log.Error("verification failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to verify email"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "email verified successfully",
	}))
}
