/*
 * @module api/middleware/metrics
 * @description HTTP 메트릭 미들웨어 - 요청 수/지연시간을 Prometheus 로 노출
 * @architecture 미들웨어층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 요청 수신 -> 처리 -> 라벨별 카운트/히스토그램 기록
 * @rules 경로 라벨은 chi 라우트 패턴을 사용해 카디널리티 폭발을 막는다
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs main.go
 */

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qatrack_http_requests_total",
			Help: "HTTP 요청 총수",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qatrack_http_request_duration_seconds",
			Help:    "HTTP 요청 처리 시간(초)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Metrics HTTP 요청 메트릭 기록 미들웨어
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
