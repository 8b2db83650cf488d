/*
 * @module api/controllers/requirement_controller
 * @description 요구사항 API 컨트롤러 - CRUD, 필터 목록, 변경 이력, 관련 항목 검색
 * @architecture MVC 아키텍처 - 컨트롤러층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 무상태 HTTP 요청 처리
 * @rules 목록 조회는 쿼리 파라미터를 필터 상태로 변환해 서비스에 위임한다
 * @dependencies qatrack-service/service, github.com/go-chi/render, github.com/spf13/cast
 * @refs service/requirement/service.go, service/qafilter/filter.go
 */

package controllers

import (
	"net/http"
	"strings"

	"qatrack-service/service"
	"qatrack-service/service/qafilter"
	"qatrack-service/service/requirement"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// RequirementController 요구사항 컨트롤러
type RequirementController struct {
	service *requirement.Service
}

// NewRequirementController 요구사항 컨트롤러 생성
func NewRequirementController() *RequirementController {
	return &RequirementController{service: service.GlobalRequirementService}
}

// CreateRequirement 요구사항 생성
// @Summary 요구사항 생성
// @Tags 요구사항
// @Accept json
// @Produce json
// @Param requirement body requirement.CreateInput true "요구사항 정보"
// @Success 200 {object} APIResponse{data=models.Requirement}
// @Failure 400 {object} APIResponse
// @Router /requirements [post]
func (c *RequirementController) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	var req requirement.CreateInput
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

// BulkCreateRequirements 요구사항 벌크 생성
// @Summary 요구사항 벌크 생성
// @Tags 요구사항
// @Accept json
// @Produce json
// @Param requirements body []requirement.CreateInput true "요구사항 목록"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /requirements/bulk [post]
func (c *RequirementController) BulkCreateRequirements(w http.ResponseWriter, r *http.Request) {
	var reqs []requirement.CreateInput
	if err := render.DecodeJSON(r.Body, &reqs); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	created, err := c.service.BulkCreate(r.Context(), reqs)
	if err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("생성 성공", map[string]int{"created": created}))
}

// GetRequirements 필터 적용 목록 조회
// @Summary 요구사항 목록 조회 (필터/정렬)
// @Tags 요구사항
// @Produce json
// @Param cycle_id query string true "사이클 ID"
// @Param system_ids query string false "시스템 ID 목록 (콤마 구분)"
// @Param statuses query string false "상태 목록 (콤마 구분)"
// @Success 200 {object} APIResponse{data=[]requirement.WithResult}
// @Failure 400 {object} APIResponse
// @Router /requirements [get]
func (c *RequirementController) GetRequirements(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycle_id")
	if cycleID == "" {
		render.JSON(w, r, BadRequestResponse("cycle_id 는 필수입니다", nil))
		return
	}

	state := parseFilterState(r)
	rows, err := c.service.ListWithResults(r.Context(), cycleID, state)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", rows))
}

// parseFilterState 쿼리 파라미터를 필터 상태로 변환
func parseFilterState(r *http.Request) qafilter.State {
	q := r.URL.Query()
	state := qafilter.State{
		SystemIDs:  splitParam(q.Get("system_ids")),
		Depth0:     splitParam(q.Get("depth_0")),
		Depth1:     splitParam(q.Get("depth_1")),
		Depth2:     splitParam(q.Get("depth_2")),
		Statuses:   splitParam(q.Get("statuses")),
		Priorities: splitParam(q.Get("priorities")),
		Severities: splitParam(q.Get("severities")),
		Scenario:   q.Get("scenario"),
		Search:     q.Get("search"),
		SortField:  q.Get("sort"),
		SortAsc:    q.Get("order") != "desc",
	}
	if v := q.Get("id_from"); v != "" {
		from := cast.ToInt(v)
		state.IDFrom = &from
	}
	if v := q.Get("id_to"); v != "" {
		to := cast.ToInt(v)
		state.IDTo = &to
	}
	return state
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GetRequirement 단건 조회
// @Summary 요구사항 상세 조회
// @Tags 요구사항
// @Produce json
// @Param id path string true "요구사항 ID"
// @Success 200 {object} APIResponse{data=models.Requirement}
// @Failure 404 {object} APIResponse
// @Router /requirements/{id} [get]
func (c *RequirementController) GetRequirement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("요구사항이 존재하지 않습니다", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", req))
}

// GetRequirementByDisplayID display_id 로 단건 조회 (#42 참조 해석용)
// @Summary 요구사항 번호 조회
// @Tags 요구사항
// @Produce json
// @Param displayId path int true "요구사항 번호"
// @Success 200 {object} APIResponse{data=models.Requirement}
// @Failure 404 {object} APIResponse
// @Router /requirements/by-display-id/{displayId} [get]
func (c *RequirementController) GetRequirementByDisplayID(w http.ResponseWriter, r *http.Request) {
	displayID := cast.ToInt(chi.URLParam(r, "displayId"))
	req, err := c.service.GetByDisplayID(r.Context(), displayID)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("요구사항이 존재하지 않습니다", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", req))
}

// UpdateRequirement 요구사항 수정 (변경 이력 적재)
// @Summary 요구사항 수정
// @Tags 요구사항
// @Accept json
// @Produce json
// @Param id path string true "요구사항 ID"
// @Param updates body object true "변경 필드"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /requirements/{id} [put]
func (c *RequirementController) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Updates      map[string]interface{} `json:"updates"`
		ChangeReason string                 `json:"change_reason"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}
	if len(req.Updates) == 0 {
		render.JSON(w, r, BadRequestResponse("변경할 필드가 없습니다", nil))
		return
	}

	if err := c.service.Update(r.Context(), id, req.Updates, req.ChangeReason); err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("수정 성공", nil))
}

// BatchDeleteRequirements 일괄 삭제
// @Summary 요구사항 일괄 삭제
// @Tags 요구사항
// @Accept json
// @Produce json
// @Param ids body object true "삭제 대상 ID 목록"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /requirements/batch-delete [post]
func (c *RequirementController) BatchDeleteRequirements(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	if err := c.service.BulkDelete(r.Context(), req.IDs); err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("삭제 성공", map[string]int{"deleted": len(req.IDs)}))
}

// GetChangeHistory 변경 이력 조회
// @Summary 요구사항 변경 이력 조회
// @Tags 요구사항
// @Produce json
// @Param id path string true "요구사항 ID"
// @Param limit query int false "최대 건수"
// @Success 200 {object} APIResponse{data=[]models.RequirementChange}
// @Failure 500 {object} APIResponse
// @Router /requirements/{id}/history [get]
func (c *RequirementController) GetChangeHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := cast.ToInt(r.URL.Query().Get("limit"))

	changes, err := c.service.GetChangeHistory(r.Context(), id, limit)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", changes))
}

// SearchRelated 관련 요구사항 검색
// @Summary 관련 요구사항 검색
// @Tags 요구사항
// @Produce json
// @Param q query string true "검색어 (번호 또는 텍스트)"
// @Param exclude query string false "제외할 요구사항 ID"
// @Success 200 {object} APIResponse{data=[]models.Requirement}
// @Failure 500 {object} APIResponse
// @Router /requirements/related-search [get]
func (c *RequirementController) SearchRelated(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	exclude := r.URL.Query().Get("exclude")
	limit := cast.ToInt(r.URL.Query().Get("limit"))

	results, err := c.service.SearchRelated(r.Context(), query, exclude, limit)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", results))
}

// GetDisplayNames display_id 일괄 이름 조회
// @Summary 관련 항목 이름 일괄 조회
// @Tags 요구사항
// @Accept json
// @Produce json
// @Param display_ids body object true "display_id 목록"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /requirements/display-names [post]
func (c *RequirementController) GetDisplayNames(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayIDs []int `json:"display_ids"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("요청 형식 오류", nil))
		return
	}

	names, err := c.service.GetNamesByDisplayIDs(r.Context(), req.DisplayIDs)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", names))
}

// GetDepthOptions cascade 필터 옵션 조회
// @Summary depth 필터 옵션 조회
// @Tags 요구사항
// @Produce json
// @Param system_ids query string false "시스템 ID 목록 (콤마 구분)"
// @Success 200 {object} APIResponse{data=qafilter.DepthOptions}
// @Failure 500 {object} APIResponse
// @Router /requirements/depth-options [get]
func (c *RequirementController) GetDepthOptions(w http.ResponseWriter, r *http.Request) {
	systemIDs := splitParam(r.URL.Query().Get("system_ids"))

	options, err := c.service.GetDepthOptions(r.Context(), systemIDs)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("조회 성공", options))
}
