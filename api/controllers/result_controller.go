/*
 * @module api/controllers/result_controller
 * @description 테스트 결과 API 컨트롤러 - 결과 기록, 재테스트 사유, 이슈 체크리스트, 시나리오 결과
 * @architecture MVC 아키텍처 - 컨트롤러층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 무상태 HTTP 요청 처리
 * @rules 결과 기록은 (요구사항, 사이클) 업서트로 위임한다
 * @dependencies qatrack-service/service, github.com/go-chi/render
 * @refs service/result/service.go
 */

package controllers

import (
	"net/http"

	"qatrack-service/service"
	"qatrack-service/service/models"
	"qatrack-service/service/result"

	"github.com/go-chi/render"
)

// ResultController 테스트 결과 컨트롤러
type ResultController struct {
	service *result.Service
}

// NewResultController 테스트 결과 컨트롤러 생성
func NewResultController() *ResultController {
	return &ResultController{service: service.GlobalResultService}
}

// RecordResult 결과 기록 (업서트)
// @Summary 테스트 결과 기록
// @Tags 테스트 결과
// @Accept json
// @Produce json
// @Param result body result.RecordInput true "결과 정보"
// @Success 200 {object} APIResponse{data=models.TestResult}
// @Failure 400 {object} APIResponse
// @Router /results [post]
func (c *ResultController) RecordResult(w http.ResponseWriter, r *http.Request) {
	var req result.RecordInput
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}
	if req.RequirementID == "" || req.CycleID == "" {
		render.JSON(w, r, BadRequestResponse("requirement_id 와 cycle_id 는 필수입니다", nil))
		return
	}

	recorded, err := c.service.Record(r.Context(), req)
	if err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("기록 성공", recorded))
}

// GetResults 사이클 결과 목록
// @Summary 사이클 결과 목록 조회
// @Tags 테스트 결과
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Success 200 {object} APIResponse{data=[]models.TestResult}
// @Failure 400 {object} APIResponse
// @Router /results [get]
func (c *ResultController) GetResults(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycle_id")
	if cycleID == "" {
		render.JSON(w, r, BadRequestResponse("cycle_id 는 필수입니다", nil))
		return
	}

	results, err := c.service.ListByCycle(r.Context(), cycleID)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", results))
}

// SetRetestReason 재테스트 사유 설정/해제
// @Summary 재테스트 사유 설정
// @Tags 테스트 결과
// @Accept json
// @Produce json
// @Param request body object true "재테스트 사유 (null 이면 해제)"
// @Success 200 {object} APIResponse{data=models.TestResult}
// @Failure 400 {object} APIResponse
// @Router /results/retest-reason [put]
func (c *ResultController) SetRetestReason(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequirementID string  `json:"requirement_id"`
		CycleID       string  `json:"cycle_id"`
		RetestReason  *string `json:"retest_reason"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	updated, err := c.service.SetRetestReason(r.Context(), req.RequirementID, req.CycleID, req.RetestReason)
	if err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("설정 성공", updated))
}

// UpdateIssueItems 이슈 체크리스트 교체
// @Summary 이슈 항목 체크리스트 갱신
// @Tags 테스트 결과
// @Accept json
// @Produce json
// @Param request body object true "이슈 항목 목록"
// @Success 200 {object} APIResponse{data=models.TestResult}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /results/issue-items [put]
func (c *ResultController) UpdateIssueItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequirementID string               `json:"requirement_id"`
		CycleID       string               `json:"cycle_id"`
		IssueItems    models.IssueItemList `json:"issue_items"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	updated, err := c.service.UpdateIssueItems(r.Context(), req.RequirementID, req.CycleID, req.IssueItems)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("결과 행이 존재하지 않습니다", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("갱신 성공", updated))
}

// RecordScenarioResult 시나리오 결과 기록 (업서트)
// @Summary 시나리오 결과 기록
// @Tags 테스트 결과
// @Accept json
// @Produce json
// @Param result body result.ScenarioRecordInput true "시나리오 결과 정보"
// @Success 200 {object} APIResponse{data=models.ScenarioResult}
// @Failure 400 {object} APIResponse
// @Router /scenario-results [post]
func (c *ResultController) RecordScenarioResult(w http.ResponseWriter, r *http.Request) {
	var req result.ScenarioRecordInput
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}
	if req.ScenarioID == "" || req.CycleID == "" {
		render.JSON(w, r, BadRequestResponse("scenario_id 와 cycle_id 는 필수입니다", nil))
		return
	}

	recorded, err := c.service.RecordScenario(r.Context(), req)
	if err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("기록 성공", recorded))
}

// GetScenarioResults 사이클 시나리오 결과 목록
// @Summary 사이클 시나리오 결과 조회
// @Tags 테스트 결과
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Success 200 {object} APIResponse{data=[]models.ScenarioResult}
// @Failure 400 {object} APIResponse
// @Router /scenario-results [get]
func (c *ResultController) GetScenarioResults(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycle_id")
	if cycleID == "" {
		render.JSON(w, r, BadRequestResponse("cycle_id 는 필수입니다", nil))
		return
	}

	results, err := c.service.ListScenarioResults(r.Context(), cycleID)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", results))
}
