package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"qatrack-service/api"
	_ "qatrack-service/docs"
	"qatrack-service/logger"

	_ "qatrack-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

var (
	PORT         = 8080
	BASE_CONTEXT = ""
)

func init() {
	logger.InitLogger()

	if val := os.Getenv("LISTEN_PORT"); val != "" {
		PORT, _ = strconv.Atoi(val)
	}

	if val := os.Getenv("BASE_CONTEXT"); val != "" {
		BASE_CONTEXT = val
	}
}

// @title QA 추적 대시보드 API
// @version 1.0
// @description 도매랑 B2B 플랫폼 QA 추적 백엔드. 요구사항/테스트 결과/시나리오 관리와 집계 통계, AI 보조 기능 제공
// @BasePath /
func main() {
	mux := chi.NewRouter()

	// BASE_CONTEXT 가 있으면 해당 경로 아래로 전체 라우트를 건다
	if BASE_CONTEXT != "" {
		mux.Route(BASE_CONTEXT, func(r chi.Router) {
			subMux := r.(*chi.Mux)
			api.InitRoute(subMux)
			r.Handle("/metrics", promhttp.Handler())
			r.Handle("/swagger*", httpSwagger.WrapHandler)
		})
	} else {
		api.InitRoute(mux)
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/swagger*", httpSwagger.WrapHandler)
	}

	addr := ":" + strconv.Itoa(PORT)
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Fatalf("error: %v", err)
	}
}
