/*
 * @module api/controllers/scenario_controller
 * @description 시나리오 API 컨트롤러 - CRUD, 요구사항 연결, E2E 구성 양방향 관리
 * @architecture MVC 아키텍처 - 컨트롤러층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 무상태 HTTP 요청 처리
 * @rules 구성 갱신의 구조 검증 실패는 400 으로 응답하고 기존 엣지를 보존한다
 * @dependencies qatrack-service/service, github.com/go-chi/render
 * @refs service/scenario/service.go
 */

package controllers

import (
	"errors"
	"net/http"

	"qatrack-service/service"
	"qatrack-service/service/scenario"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ScenarioController 시나리오 컨트롤러
type ScenarioController struct {
	service *scenario.Service
}

// NewScenarioController 시나리오 컨트롤러 생성
func NewScenarioController() *ScenarioController {
	return &ScenarioController{service: service.GlobalScenarioService}
}

// CreateScenario 시나리오 생성
// @Summary 시나리오 생성
// @Tags 시나리오
// @Accept json
// @Produce json
// @Param scenario body scenario.CreateInput true "시나리오 정보"
// @Success 200 {object} APIResponse{data=models.TestScenario}
// @Failure 400 {object} APIResponse
// @Router /scenarios [post]
func (c *ScenarioController) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenario.CreateInput
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	created, err := c.service.Create(r.Context(), req)
	if err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("생성 성공", created))
}

// GetScenarios 시나리오 목록
// @Summary 시나리오 목록 조회
// @Tags 시나리오
// @Produce json
// @Param type query string false "시나리오 유형 (unit/integration/e2e)"
// @Param status query string false "상태 (active/draft/deprecated)"
// @Param q query string false "제목 검색어"
// @Success 200 {object} APIResponse{data=[]models.TestScenario}
// @Failure 500 {object} APIResponse
// @Router /scenarios [get]
func (c *ScenarioController) GetScenarios(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scenarios, err := c.service.List(r.Context(), q.Get("type"), q.Get("status"), q.Get("q"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", scenarios))
}

// GetScenario 시나리오 상세
// @Summary 시나리오 상세 조회
// @Tags 시나리오
// @Produce json
// @Param id path string true "시나리오 ID"
// @Success 200 {object} APIResponse{data=models.TestScenario}
// @Failure 404 {object} APIResponse
// @Router /scenarios/{id} [get]
func (c *ScenarioController) GetScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("시나리오가 존재하지 않습니다", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", found))
}

// UpdateScenario 시나리오 수정
// @Summary 시나리오 수정
// @Tags 시나리오
// @Accept json
// @Produce json
// @Param id path string true "시나리오 ID"
// @Param updates body object true "변경 필드"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /scenarios/{id} [put]
func (c *ScenarioController) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var updates map[string]interface{}
	if err := render.DecodeJSON(r.Body, &updates); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	if err := c.service.Update(r.Context(), id, updates); err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("수정 성공", nil))
}

// DeleteScenario 시나리오 삭제
// @Summary 시나리오 삭제
// @Tags 시나리오
// @Produce json
// @Param id path string true "시나리오 ID"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /scenarios/{id} [delete]
func (c *ScenarioController) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.service.Delete(r.Context(), id); err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("삭제 성공", nil))
}

// SetScenarioRequirements 요구사항 연결 전체 교체
// @Summary 시나리오 요구사항 연결 교체
// @Tags 시나리오
// @Accept json
// @Produce json
// @Param id path string true "시나리오 ID"
// @Param links body object true "요구사항 연결 목록"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /scenarios/{id}/requirements [put]
func (c *ScenarioController) SetScenarioRequirements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Links []scenario.RequirementLink `json:"links"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	if err := c.service.SetRequirements(r.Context(), id, req.Links); err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("교체 성공", nil))
}

// GetChildren E2E 부모의 자식 구성 조회
// @Summary E2E 자식 시나리오 조회
// @Tags 시나리오
// @Produce json
// @Param id path string true "부모 시나리오 ID"
// @Param cycle_id query string false "사이클 ID (지정 시 자식별 시나리오 결과 포함)"
// @Success 200 {object} APIResponse{data=[]scenario.ChildEntry}
// @Failure 500 {object} APIResponse
// @Router /scenarios/{id}/children [get]
func (c *ScenarioController) GetChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	children, err := c.service.GetChildren(r.Context(), id, r.URL.Query().Get("cycle_id"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", children))
}

// GetParents integration 자식의 부모 구성 조회
// @Summary 소속 E2E 시나리오 조회
// @Tags 시나리오
// @Produce json
// @Param id path string true "자식 시나리오 ID"
// @Success 200 {object} APIResponse{data=[]scenario.ParentEntry}
// @Failure 500 {object} APIResponse
// @Router /scenarios/{id}/parents [get]
func (c *ScenarioController) GetParents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	parents, err := c.service.GetParents(r.Context(), id)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", parents))
}

// SetChildren E2E 부모의 자식 구성 교체
// @Summary E2E 자식 구성 교체
// @Tags 시나리오
// @Accept json
// @Produce json
// @Param id path string true "부모 시나리오 ID"
// @Param children body object true "자식 시나리오 ID 목록 (순서 유지)"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /scenarios/{id}/children [put]
func (c *ScenarioController) SetChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		ChildIDs []string `json:"child_ids"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	if err := c.service.SetChildren(r.Context(), id, req.ChildIDs); err != nil {
		c.renderCompositionError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("교체 성공", nil))
}

// SetParents integration 자식의 부모 구성 교체
// @Summary 소속 E2E 구성 교체
// @Tags 시나리오
// @Accept json
// @Produce json
// @Param id path string true "자식 시나리오 ID"
// @Param parents body object true "부모 시나리오 ID 목록"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /scenarios/{id}/parents [put]
func (c *ScenarioController) SetParents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		ParentIDs []string `json:"parent_ids"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	if err := c.service.SetParents(r.Context(), id, req.ParentIDs); err != nil {
		c.renderCompositionError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("교체 성공", nil))
}

func (c *ScenarioController) renderCompositionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scenario.ErrParentNotE2E),
		errors.Is(err, scenario.ErrChildNotIntegration),
		errors.Is(err, scenario.ErrCompositionNotExists):
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
	default:
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
	}
}
