// Package register реализует HTTP-обработчик регистрации компании-клиента.
//
// Handler принимает JSON с данными компании, валидирует их, создает учетную
// запись с ролью admin и возвращает номер тикета поддержки. Письмо со
// ссылкой подтверждения уходит через очередь рассылки.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Request — входные данные для регистрации.
type Request struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	CompanyName  string `json:"company_name" validate:"required"`
	CompanySize  string `json:"company_size"`
	IndustryType string `json:"industry_type"`
	Plan         string `json:"plan" validate:"required"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, user models.User, rawPassword string) (string, error)
}

// Handler управляет HTTP-запросами на регистрацию.
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

// ServeHTTP godoc
// @Summary Зарегистрировать компанию
// @Description Создает учетную запись с ролью admin и отправляет письмо подтверждения. Возвращает номер тикета поддержки.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные компании"
// @Success 200 {object} map[string]any "Успешная регистрация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /api/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		CompanyName:  req.CompanyName,
		CompanySize:  req.CompanySize,
		IndustryType: req.IndustryType,
		Plan:         req.Plan,
	}
	ticket, err := h.service.Register(r.Context(), user, req.Password)
	if errors.Is(err, services.ErrUserExists) {
		log.Warn("email already taken", slog.String("email", req.Email))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user already exists"))
		return
	}
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"support_ticket": ticket,
		"message":        "registration successful, please verify your email",
	}))
}
