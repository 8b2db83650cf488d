/*
 * @module api/controllers/system_controller
 * @description 시스템/사이클 API 컨트롤러 - 테스트 대상 시스템 목록과 사이클 관리
 * @architecture MVC 아키텍처 - 컨트롤러층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 무상태 HTTP 요청 처리
 * @rules 시스템은 시드된 3종 고정이며 API 로 생성하지 않는다
 * @dependencies qatrack-service/service, github.com/go-chi/render
 * @refs service/cycle/service.go
 */

package controllers

import (
	"net/http"

	"qatrack-service/service"
	"qatrack-service/service/cycle"
	"qatrack-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// SystemController 시스템/사이클 컨트롤러
type SystemController struct {
	cycles *cycle.Service
}

// NewSystemController 시스템/사이클 컨트롤러 생성
func NewSystemController() *SystemController {
	return &SystemController{cycles: service.GlobalCycleService}
}

// GetSystems 시스템 목록
// @Summary 시스템 목록 조회
// @Tags 시스템
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.System}
// @Failure 500 {object} APIResponse
// @Router /systems [get]
func (c *SystemController) GetSystems(w http.ResponseWriter, r *http.Request) {
	var systems []models.System
	if err := service.DB.WithContext(r.Context()).Order("created_at").Find(&systems).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", systems))
}

// CreateCycle 사이클 생성
// @Summary 테스트 사이클 생성
// @Tags 사이클
// @Accept json
// @Produce json
// @Param cycle body object true "사이클 정보"
// @Success 200 {object} APIResponse{data=models.TestCycle}
// @Failure 400 {object} APIResponse
// @Router /cycles [post]
func (c *SystemController) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	created, err := c.cycles.Create(r.Context(), req.Name)
	if err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("생성 성공", created))
}

// GetCycles 사이클 목록
// @Summary 테스트 사이클 목록 조회
// @Tags 사이클
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.TestCycle}
// @Failure 500 {object} APIResponse
// @Router /cycles [get]
func (c *SystemController) GetCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := c.cycles.List(r.Context())
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", cycles))
}

// CloseCycle 사이클 종료
// @Summary 테스트 사이클 종료
// @Tags 사이클
// @Produce json
// @Param id path string true "사이클 ID"
// @Success 200 {object} APIResponse{data=models.TestCycle}
// @Failure 404 {object} APIResponse
// @Router /cycles/{id}/close [post]
func (c *SystemController) CloseCycle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	closed, err := c.cycles.Close(r.Context(), id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("사이클이 존재하지 않습니다", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("종료 성공", closed))
}
