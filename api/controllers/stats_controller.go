/*
 * @module api/controllers/stats_controller
 * @description 통계 API 컨트롤러 - 대시보드 집계, 기능영역 분해, 이슈/시나리오 통계, 추천, 스냅샷
 * @architecture MVC 아키텍처 - 컨트롤러층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 무상태 HTTP 요청 처리
 * @rules 모든 통계 조회는 cycle_id 를 기준으로 한다
 * @dependencies qatrack-service/service, github.com/go-chi/render, github.com/spf13/cast
 * @refs service/stats/service.go, service/snapshot/service.go
 */

package controllers

import (
	"net/http"

	"qatrack-service/service"
	"qatrack-service/service/snapshot"
	"qatrack-service/service/stats"

	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// StatsController 통계 컨트롤러
type StatsController struct {
	service   *stats.Service
	snapshots *snapshot.Service
}

// NewStatsController 통계 컨트롤러 생성
func NewStatsController() *StatsController {
	return &StatsController{
		service:   service.GlobalStatsService,
		snapshots: service.GlobalSnapshotService,
	}
}

func requireCycleID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cycleID := r.URL.Query().Get("cycle_id")
	if cycleID == "" {
		render.JSON(w, r, BadRequestResponse("cycle_id 는 필수입니다", nil))
		return "", false
	}
	return cycleID, true
}

// GetDashboard 대시보드 전체 집계
// @Summary 대시보드 통계 조회
// @Tags 통계
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Success 200 {object} APIResponse{data=stats.DashboardStats}
// @Failure 400 {object} APIResponse
// @Router /stats/dashboard [get]
func (c *StatsController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := requireCycleID(w, r)
	if !ok {
		return
	}

	dashboard, err := c.service.GetDashboardStats(r.Context(), cycleID)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", dashboard))
}

// GetDepthGroups 기능영역별 집계
// @Summary 기능영역별 통계 조회
// @Tags 통계
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Success 200 {object} APIResponse{data=[]stats.DepthGroupStat}
// @Failure 400 {object} APIResponse
// @Router /stats/depth-groups [get]
func (c *StatsController) GetDepthGroups(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := requireCycleID(w, r)
	if !ok {
		return
	}

	groups, err := c.service.GetDepthGroupStats(r.Context(), cycleID)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", groups))
}

// GetIssues 이슈 통계
// @Summary 이슈 통계 조회
// @Tags 통계
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Success 200 {object} APIResponse{data=stats.IssueStats}
// @Failure 400 {object} APIResponse
// @Router /stats/issues [get]
func (c *StatsController) GetIssues(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := requireCycleID(w, r)
	if !ok {
		return
	}

	issues, err := c.service.GetIssueStats(r.Context(), cycleID)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", issues))
}

// GetScenarioStats 시나리오 통계
// @Summary 시나리오 통계 조회
// @Tags 통계
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Success 200 {object} APIResponse{data=stats.ScenarioStats}
// @Failure 400 {object} APIResponse
// @Router /stats/scenarios [get]
func (c *StatsController) GetScenarioStats(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := requireCycleID(w, r)
	if !ok {
		return
	}

	scenarioStats, err := c.service.GetScenarioStats(r.Context(), cycleID)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", scenarioStats))
}

// GetNextRecommended 다음 테스트 추천
// @Summary 다음 테스트 항목 추천
// @Tags 통계
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Param limit query int false "최대 건수"
// @Success 200 {object} APIResponse{data=[]models.Requirement}
// @Failure 400 {object} APIResponse
// @Router /stats/next-recommended [get]
func (c *StatsController) GetNextRecommended(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := requireCycleID(w, r)
	if !ok {
		return
	}
	limit := cast.ToInt(r.URL.Query().Get("limit"))

	recommended, err := c.service.GetNextRecommended(r.Context(), cycleID, limit)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", recommended))
}

// GetSnapshots 진행률 스냅샷 추이
// @Summary 진행률 스냅샷 조회
// @Tags 통계
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Param system_id query string false "시스템 ID (없으면 전체 집계)"
// @Success 200 {object} APIResponse{data=[]models.ProgressSnapshot}
// @Failure 400 {object} APIResponse
// @Router /stats/snapshots [get]
func (c *StatsController) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := requireCycleID(w, r)
	if !ok {
		return
	}

	snapshots, err := c.service.GetSnapshots(r.Context(), cycleID, r.URL.Query().Get("system_id"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", snapshots))
}

// TriggerSnapshot 스냅샷 수동 적재
// @Summary 진행률 스냅샷 수동 적재
// @Tags 통계
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /stats/snapshots [post]
func (c *StatsController) TriggerSnapshot(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := requireCycleID(w, r)
	if !ok {
		return
	}

	if err := c.snapshots.SnapshotCycle(r.Context(), cycleID); err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("적재 성공", nil))
}
