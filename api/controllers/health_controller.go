/*
 * @module api/controllers/health_controller
 * @description 헬스체크 API 컨트롤러 - liveness/readiness 확인
 * @architecture MVC 아키텍처 - 컨트롤러층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 무상태 HTTP 요청 처리
 * @rules readiness 는 DB 연결까지 확인한다
 * @dependencies qatrack-service/service, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"

	"qatrack-service/service"

	"github.com/go-chi/render"
)

// HealthController 헬스체크 컨트롤러
type HealthController struct{}

// NewHealthController 헬스체크 컨트롤러 생성
func NewHealthController() *HealthController {
	return &HealthController{}
}

// Health 프로세스 생존 확인
// @Summary 헬스체크
// @Tags 헬스체크
// @Produce json
// @Success 200 {object} APIResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("ok", nil))
}

// Ready 서비스 준비 상태 확인 (DB 포함)
// @Summary 준비 상태 확인
// @Tags 헬스체크
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := service.DB.DB()
	if err != nil || sqlDB.PingContext(r.Context()) != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("데이터베이스 연결 불가", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("ready", nil))
}
