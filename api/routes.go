/*
 * @module api/routes
 * @description API 라우팅 구성 - 모든 HTTP 라우트 초기화
 * @architecture RESTful API 아키텍처
 * @documentReference ai_docs/requirements.md
 * @stateFlow 무상태 HTTP 요청 처리
 * @rules RESTful 설계 준수, 응답 형식은 APIResponse 로 통일
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"qatrack-service/api/controllers"
	apimw "qatrack-service/api/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 모든 API 라우트 초기화
func InitRoute(r *chi.Mux) {
	// 기본 미들웨어
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(apimw.Metrics)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS 설정
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 헬스체크
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 시스템/사이클
	systemController := controllers.NewSystemController()
	r.Get("/systems", systemController.GetSystems)
	r.Route("/cycles", func(r chi.Router) {
		r.Post("/", systemController.CreateCycle)
		r.Get("/", systemController.GetCycles)
		r.Post("/{id}/close", systemController.CloseCycle)
	})

	// 요구사항
	r.Route("/requirements", func(r chi.Router) {
		requirementController := controllers.NewRequirementController()

		r.Post("/", requirementController.CreateRequirement)
		r.Get("/", requirementController.GetRequirements)
		r.Post("/bulk", requirementController.BulkCreateRequirements)
		r.Post("/batch-delete", requirementController.BatchDeleteRequirements)
		r.Get("/related-search", requirementController.SearchRelated)
		r.Post("/display-names", requirementController.GetDisplayNames)
		r.Get("/depth-options", requirementController.GetDepthOptions)
		r.Get("/by-display-id/{displayId}", requirementController.GetRequirementByDisplayID)
		r.Get("/{id}", requirementController.GetRequirement)
		r.Put("/{id}", requirementController.UpdateRequirement)
		r.Get("/{id}/history", requirementController.GetChangeHistory)
	})

	// 테스트 결과
	resultController := controllers.NewResultController()
	r.Route("/results", func(r chi.Router) {
		r.Post("/", resultController.RecordResult)
		r.Get("/", resultController.GetResults)
		r.Put("/retest-reason", resultController.SetRetestReason)
		r.Put("/issue-items", resultController.UpdateIssueItems)
	})
	r.Route("/scenario-results", func(r chi.Router) {
		r.Post("/", resultController.RecordScenarioResult)
		r.Get("/", resultController.GetScenarioResults)
	})

	// 시나리오
	r.Route("/scenarios", func(r chi.Router) {
		scenarioController := controllers.NewScenarioController()

		r.Post("/", scenarioController.CreateScenario)
		r.Get("/", scenarioController.GetScenarios)
		r.Get("/{id}", scenarioController.GetScenario)
		r.Put("/{id}", scenarioController.UpdateScenario)
		r.Delete("/{id}", scenarioController.DeleteScenario)
		r.Put("/{id}/requirements", scenarioController.SetScenarioRequirements)
		r.Get("/{id}/children", scenarioController.GetChildren)
		r.Put("/{id}/children", scenarioController.SetChildren)
		r.Get("/{id}/parents", scenarioController.GetParents)
		r.Put("/{id}/parents", scenarioController.SetParents)
	})

	// 통계
	r.Route("/stats", func(r chi.Router) {
		statsController := controllers.NewStatsController()

		r.Get("/dashboard", statsController.GetDashboard)
		r.Get("/depth-groups", statsController.GetDepthGroups)
		r.Get("/issues", statsController.GetIssues)
		r.Get("/scenarios", statsController.GetScenarioStats)
		r.Get("/next-recommended", statsController.GetNextRecommended)
		r.Get("/snapshots", statsController.GetSnapshots)
		r.Post("/snapshots", statsController.TriggerSnapshot)
	})

	// AI
	r.Route("/ai", func(r chi.Router) {
		aiController := controllers.NewAIController()

		r.Get("/insights", aiController.StreamInsights)
		r.Post("/scenario-generate", aiController.GenerateScenario)
	})

	// 벌크 임포트
	importController := controllers.NewImportController()
	r.Post("/import/requirements", importController.ImportRequirements)
	r.Post("/import/requirements/preview", importController.PreviewRequirements)
}
