package login

import (
	"bytes"
	"context"
	"encoding/json"
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

func (m *AuthServiceMock) Login(ctx context.Context, email, rawPassword, ipAddress, userAgent string) (string, *models.User, []string, error) {
	args := m.Called(ctx, email, rawPassword, ipAddress, userAgent)
	user, _ := args.Get(1).(*models.User)
	perms, _ := args.Get(2).([]string)
	return args.String(0), user, perms, args.Error(3)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), authMock)

	user := &models.User{
		ID:    7,
		Name:  "Ivan",
		Email: "ivan@corp.ru",
		Role:  "admin",
		Plan:  "pro",
	}

	tests := []struct {
		name           string
		requestBody    any
		mockToken      string
		mockUser       *models.User
		mockPerms      []string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "успешный вход",
			requestBody:    Request{Email: "ivan@corp.ru", Password: "password123"},
			mockToken:      "tok",
			mockUser:       user,
			mockPerms:      []string{"view_dashboard"},
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "пользователь не найден",
			requestBody:    Request{Email: "ghost@corp.ru", Password: "password123"},
			mockErr:        services.ErrUserNotFound,
			callService:    true,
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
			wantStatus:     "Error",
		},
		{
			name:           "неверный пароль",
			requestBody:    Request{Email: "ivan@corp.ru", Password: "wrongpass"},
			mockErr:        services.ErrInvalidCredentials,
			callService:    true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid credentials",
			wantStatus:     "Error",
		},
		{
			name:           "email не подтвержден",
			requestBody:    Request{Email: "ivan@corp.ru", Password: "password123"},
			mockErr:        services.ErrNotVerified,
			callService:    true,
			wantStatusCode: http.StatusForbidden,
			wantError:      "email is not verified",
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
			name:           "нет пароля",
			requestBody:    Request{Email: "ivan@corp.ru"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.callService {
				body := tt.requestBody.(Request)
				authMock.On("Login", mock.Anything, body.Email, body.Password, mock.Anything, mock.Anything).
					Return(tt.mockToken, tt.mockUser, tt.mockPerms, tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(bodyBytes))
			req.RemoteAddr = "192.168.0.10:51234"
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
			assert.Equal(t, tt.mockToken, data["token"])

			gotUser, ok := data["user"].(map[string]any)
			assert.True(t, ok)
			assert.Equal(t, user.Email, gotUser["email"])
			assert.Equal(t, user.Role, gotUser["role"])
			assert.Equal(t, []any{"view_dashboard"}, gotUser["permissions"])

			authMock.AssertExpectations(t)
		})
	}
}

// Даже без прав токен выдается, а permissions сериализуется пустым массивом.
func TestLoginHandler_EmptyPermissions(t *testing.T) {
	authMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), authMock)

	authMock.On("Login", mock.Anything, "ivan@corp.ru", "password123", mock.Anything, mock.Anything).
		Return("tok", &models.User{ID: 7, Email: "ivan@corp.ru"}, []string(nil), nil).Once()

	body, _ := json.Marshal(Request{Email: "ivan@corp.ru", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	data := got["data"].(map[string]any)
	gotUser := data["user"].(map[string]any)
	assert.Equal(t, []any{}, gotUser["permissions"])
}
