/*
 * @module api/controllers/ai_controller
 * @description AI API 컨트롤러 - 현황 인사이트 SSE 스트리밍, 시나리오 초안 생성
 * @architecture MVC 아키텍처 - 컨트롤러층
 * @documentReference ai_docs/ai_design.md
 * @stateFlow 한도/구성 확인 -> 서비스 위임 -> SSE 중계 또는 JSON 응답
 * @rules 생성 초안은 저장하지 않는다, 비활성/한도 초과는 각각 503/429 로 구분한다
 * @dependencies qatrack-service/service, github.com/go-chi/render
 * @refs service/ai/service.go
 */

package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"qatrack-service/service"
	"qatrack-service/service/ai"

	"github.com/go-chi/render"
)

// AIController AI 컨트롤러
type AIController struct {
	service *ai.Service
}

// NewAIController AI 컨트롤러 생성
func NewAIController() *AIController {
	return &AIController{service: service.GlobalAIService}
}

// StreamInsights 현황 인사이트 SSE 스트리밍
// @Summary QA 현황 인사이트 스트리밍
// @Tags AI
// @Produce text/event-stream
// @Param cycle_id query string true "사이클 ID"
// @Success 200 {string} string "SSE 스트림"
// @Failure 400 {object} APIResponse
// @Failure 429 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /ai/insights [get]
func (c *AIController) StreamInsights(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycle_id")
	if cycleID == "" {
		render.JSON(w, r, BadRequestResponse("cycle_id 는 필수입니다", nil))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		render.JSON(w, r, InternalErrorResponse("스트리밍을 지원하지 않는 연결입니다", nil))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := c.service.StreamInsights(r.Context(), cycleID, func(chunk string) error {
		if _, werr := fmt.Fprintf(w, "data: %s\n\n", chunk); werr != nil {
			return werr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// 스트림 시작 전 오류만 이벤트로 알릴 수 있다
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
		flusher.Flush()
		return
	}

	fmt.Fprint(w, "event: done\ndata: \n\n")
	flusher.Flush()
}

// GenerateScenario 시나리오 초안 생성
// @Summary AI 시나리오 초안 생성
// @Tags AI
// @Accept json
// @Produce json
// @Param request body object true "시나리오 유형, 요구사항 ID 목록, 업무 맥락"
// @Success 200 {object} APIResponse{data=ai.GeneratedScenario}
// @Failure 400 {object} APIResponse
// @Failure 429 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /ai/scenario-generate [post]
func (c *AIController) GenerateScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioType    string   `json:"scenario_type"`
		RequirementIDs  []string `json:"requirement_ids"`
		BusinessContext string   `json:"business_context"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	generated, err := c.service.GenerateScenario(r.Context(), req.ScenarioType, req.RequirementIDs, req.BusinessContext)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrNotConfigured):
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		case errors.Is(err, ai.ErrRateLimited):
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, TooManyRequestsResponse(err.Error(), nil))
		default:
			render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		}
		return
	}
	render.JSON(w, r, SuccessResponse("생성 성공", generated))
}
