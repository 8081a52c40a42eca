// Package metrics содержит счетчики Prometheus и middleware, снимающий
// метрики HTTP-запросов.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_http_requests_total",
		Help: "Количество HTTP-запросов по методу, пути и коду ответа.",
	}, []string{"method", "path", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_http_request_duration_seconds",
		Help:    "Длительность обработки HTTP-запросов.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	emailJobsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_email_jobs_published_total",
		Help: "Количество почтовых заданий, опубликованных в очередь.",
	}, []string{"routing_key"})
)

// ObserveEmailJob увеличивает счетчик опубликованных почтовых заданий.
func ObserveEmailJob(routingKey string) {
	emailJobsPublished.WithLabelValues(routingKey).Inc()
}

// Middleware снимает счетчик и гистограмму длительности для каждого запроса.
// Путь берется из шаблона маршрута chi, чтобы не плодить метки на каждый ID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
