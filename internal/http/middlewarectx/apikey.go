package middlewarectx

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/crm-backoffice/internal/http/response"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
)

// APIKeyService описывает контракт проверки API-ключей и учета обращений.
type APIKeyService interface {
	Authenticate(ctx context.Context, secret string) (*models.APIKey, error)
	LogUsage(ctx context.Context, entry models.APIUsageLog)
}

// APIKeyFromContext возвращает API-ключ из контекста запроса.
func APIKeyFromContext(ctx context.Context) (*models.APIKey, bool) {
	key, ok := ctx.Value(APIKeyKey).(*models.APIKey)
	return key, ok
}

// APIKeyMiddleware возвращает middleware публичного API: проверяет ключ
// из заголовка x-api-key и после обработки запроса записывает обращение
// в журнал использования. Отсутствующий ключ — 401, неизвестный или
// отозванный — 403.
func APIKeyMiddleware(keys APIKeyService, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.APIKeyMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			secret := r.Header.Get("x-api-key")
			if secret == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("api key required"))
				return
			}

			key, err := keys.Authenticate(r.Context(), secret)
			if err != nil {
				log.Warn("api key rejected", sl.Err(err))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("invalid api key"))
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyKey, key)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			keys.LogUsage(r.Context(), models.APIUsageLog{
				APIKeyID:   key.ID,
				UserID:     key.UserID,
				Endpoint:   r.URL.Path,
				Method:     r.Method,
				StatusCode: ww.Status(),
				IPAddress:  ip,
			})
		})
	}
}
