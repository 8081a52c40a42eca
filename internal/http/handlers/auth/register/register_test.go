package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, user models.User, rawPassword string) (string, error) {
	args := m.Called(ctx, user, rawPassword)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validRequest() Request {
	return Request{
		Name:        "Ivan Petrov",
		Email:       "ivan@corp.ru",
		Password:    "password123",
		CompanyName: "Corp LLC",
		Plan:        "pro",
	}
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockTicket     string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "успешная регистрация",
			requestBody:    validRequest(),
			mockTicket:     "CRM-482913",
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "email уже занят",
			requestBody:    validRequest(),
			mockErr:        services.ErrUserExists,
			callService:    true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "user already exists",
			wantStatus:     "Error",
		},
		{
			name:           "ошибка хранилища",
			requestBody:    validRequest(),
			mockErr:        errors.New("db down"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to register user",
			wantStatus:     "Error",
		},
		{
			name:           "некорректный json",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name: "нет названия компании",
			requestBody: Request{
				Name:     "Ivan Petrov",
				Email:    "ivan@corp.ru",
				Password: "password123",
				Plan:     "pro",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field CompanyName is a required field",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock)

			if tt.callService {
				authMock.On("Register", mock.Anything, mock.Anything, "password123").
					Return(tt.mockTicket, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
				return
			}

			data, ok := got["data"].(map[string]any)
			assert.True(t, ok)
			assert.Equal(t, tt.mockTicket, data["support_ticket"])

			authMock.AssertExpectations(t)
		})
	}
}

// Роль в запросе не принимается: регистрация всегда создает admin,
// и это решает сервис, а не клиентский JSON.
func TestRegisterHandler_IgnoresRoleField(t *testing.T) {
	authMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), authMock)

	var captured models.User
	authMock.On("Register", mock.Anything, mock.Anything, "password123").
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(models.User)
		}).
		Return("CRM-100001", nil).Once()

	body := []byte(`{"name":"Ivan Petrov","email":"ivan@corp.ru","password":"password123",` +
		`"company_name":"Corp LLC","plan":"pro","role":"superadmin"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, captured.Role)
	authMock.AssertExpectations(t)
}
