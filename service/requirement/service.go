/*
 * @module service/requirement/service
 * @description 요구사항 서비스 - CRUD, display_id 시퀀스 부여, 변경 감사로그(best-effort), 필터 조회, 관련 항목 검색
 * @architecture 분층 아키텍처 - 업무 서비스층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 단건/벌크 생성 -> 상세 수정(변경 이력 적재) -> 벌크 삭제
 * @rules 추적 필드 변경마다 requirement_changes append, 이력 적재 실패는 주 저장을 막지 않는다
 * @dependencies qatrack-service/service/models, qatrack-service/service/qafilter, gorm.io/gorm
 * @refs service/models/qa.go
 */

package requirement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"qatrack-service/service/models"
	"qatrack-service/service/qafilter"

	"gorm.io/gorm"
)

// ErrSystemRequired 시스템 미지정 검증 오류
var ErrSystemRequired = errors.New("시스템을 선택해야 합니다")

// 변경 이력을 남기는 추적 필드 목록
var trackedFields = []string{
	"depth_0", "depth_1", "depth_2", "depth_3",
	"feature_name", "original_spec", "current_policy", "policy_note",
	"precondition", "test_steps", "expected_result",
	"priority", "related_ids", "scenario_link", "backlog_link",
}

// Service 요구사항 서비스
type Service struct {
	db *gorm.DB
}

// NewService 요구사항 서비스 생성
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput 단건/벌크 생성 입력
type CreateInput struct {
	SystemID     string  `json:"system_id"`
	Depth0       *string `json:"depth_0"`
	Depth1       *string `json:"depth_1"`
	Depth2       *string `json:"depth_2"`
	Depth3       *string `json:"depth_3"`
	FeatureName  *string `json:"feature_name"`
	OriginalSpec *string `json:"original_spec"`
	Priority     *string `json:"priority"`
}

// Create 요구사항 단건 생성. display_id 는 트랜잭션 안에서 max+1 로 부여한다.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Requirement, error) {
	if input.SystemID == "" {
		return nil, ErrSystemRequired
	}

	req := &models.Requirement{
		SystemID:     input.SystemID,
		Depth0:       input.Depth0,
		Depth1:       input.Depth1,
		Depth2:       input.Depth2,
		Depth3:       input.Depth3,
		FeatureName:  input.FeatureName,
		OriginalSpec: input.OriginalSpec,
		Priority:     input.Priority,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextDisplayID(tx)
		if err != nil {
			return err
		}
		req.DisplayID = &next
		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// BulkCreate 벌크 생성. 한 트랜잭션에서 연속 display_id 를 부여한다.
func (s *Service) BulkCreate(ctx context.Context, inputs []CreateInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextDisplayID(tx)
		if err != nil {
			return err
		}
		for _, input := range inputs {
			if input.SystemID == "" {
				return ErrSystemRequired
			}
			displayID := next
			req := &models.Requirement{
				SystemID:     input.SystemID,
				Depth0:       input.Depth0,
				Depth1:       input.Depth1,
				Depth2:       input.Depth2,
				Depth3:       input.Depth3,
				FeatureName:  input.FeatureName,
				OriginalSpec: input.OriginalSpec,
				Priority:     input.Priority,
				DisplayID:    &displayID,
			}
			if err := tx.Create(req).Error; err != nil {
				return err
			}
			next++
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func nextDisplayID(tx *gorm.DB) (int, error) {
	var max *int
	if err := tx.Model(&models.Requirement{}).Select("MAX(display_id)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// GetByID 단건 조회 (시스템, 결과 포함)
func (s *Service) GetByID(ctx context.Context, id string) (*models.Requirement, error) {
	var req models.Requirement
	if err := s.db.WithContext(ctx).
		Preload("System").
		Preload("TestResults").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByDisplayID display_id 로 단건 조회
func (s *Service) GetByDisplayID(ctx context.Context, displayID int) (*models.Requirement, error) {
	var req models.Requirement
	if err := s.db.WithContext(ctx).
		Preload("System").
		Preload("TestResults").
		First(&req, "display_id = ?", displayID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// WithResult 목록 조회 뷰 모델: 요구사항 + 해당 사이클 현재 결과
type WithResult struct {
	models.Requirement
	CurrentResult *models.TestResult `json:"current_result,omitempty"`
}

// ListWithResults 필터 상태를 적용한 목록 조회. 결과는 사이클 기준으로 부착한다.
func (s *Service) ListWithResults(ctx context.Context, cycleID string, state qafilter.State) ([]WithResult, error) {
	var requirements []models.Requirement
	if err := s.db.WithContext(ctx).
		Preload("System").
		Order("created_at").
		Find(&requirements).Error; err != nil {
		return nil, err
	}

	var results []models.TestResult
	if err := s.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	index := make(map[string]*models.TestResult, len(results))
	for i := range results {
		index[results[i].RequirementID] = &results[i]
	}

	filtered := qafilter.Apply(state, requirements, index)

	out := make([]WithResult, 0, len(filtered))
	for _, req := range filtered {
		out = append(out, WithResult{Requirement: req, CurrentResult: index[req.ID]})
	}
	return out, nil
}

// GetDepthOptions cascade 필터용 depth 값 목록
func (s *Service) GetDepthOptions(ctx context.Context, systemIDs []string) (qafilter.DepthOptions, error) {
	var requirements []models.Requirement
	if err := s.db.WithContext(ctx).
		Select("system_id", "depth_0", "depth_1", "depth_2").
		Find(&requirements).Error; err != nil {
		return qafilter.DepthOptions{}, err
	}
	return qafilter.BuildDepthOptions(requirements, systemIDs), nil
}

// Update 수정 + 추적 필드 변경 이력 적재.
// 데이터 갱신이 주 연산이고 이력 적재는 best-effort 로 뒤따른다.
func (s *Service) Update(ctx context.Context, id string, updates map[string]interface{}, changeReason string) error {
	var before models.Requirement
	if err := s.db.WithContext(ctx).First(&before, "id = ?", id).Error; err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	if _, ok := updates["current_policy"]; ok {
		updates["policy_updated_at"] = time.Now()
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Requirement{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return err
	}

	s.logChanges(ctx, &before, updates, changeReason)
	return nil
}

// logChanges 추적 필드 diff 를 requirement_changes 에 append.
// 실패해도 주 저장을 깨지 않는다 (진단 로그만 남김).
func (s *Service) logChanges(ctx context.Context, before *models.Requirement, updates map[string]interface{}, reason string) {
	for _, field := range trackedFields {
		newRaw, ok := updates[field]
		if !ok {
			continue
		}
		oldValue := fieldValue(before, field)
		newValue := toStringPtr(newRaw)
		if equalPtr(oldValue, newValue) {
			continue
		}

		change := &models.RequirementChange{
			RequirementID: before.ID,
			ChangedField:  field,
			OldValue:      oldValue,
			NewValue:      newValue,
		}
		if reason != "" {
			change.ChangeReason = &reason
		}
		if err := s.db.WithContext(ctx).Create(change).Error; err != nil {
			slog.Warn("변경 이력 적재 실패", "requirement_id", before.ID, "field", field, "error", err)
		}
	}
}

// LogStatusChange 결과 상태 전이의 감사로그 (결과 서비스에서 호출)
func (s *Service) LogStatusChange(ctx context.Context, requirementID, oldStatus, newStatus, tester string) {
	change := &models.RequirementChange{
		RequirementID: requirementID,
		ChangedField:  "status",
		OldValue:      &oldStatus,
		NewValue:      &newStatus,
	}
	if tester != "" {
		change.ChangeReason = &tester
	}
	if err := s.db.WithContext(ctx).Create(change).Error; err != nil {
		slog.Warn("상태 변경 이력 적재 실패", "requirement_id", requirementID, "error", err)
	}
}

// GetChangeHistory 변경 이력 조회 (최신순)
func (s *Service) GetChangeHistory(ctx context.Context, requirementID string, limit int) ([]models.RequirementChange, error) {
	if limit <= 0 {
		limit = 20
	}
	var changes []models.RequirementChange
	if err := s.db.WithContext(ctx).
		Where("requirement_id = ?", requirementID).
		Order("changed_at DESC").
		Limit(limit).
		Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

// BulkDelete id 목록 일괄 삭제 (청크 단위)
func (s *Service) BulkDelete(ctx context.Context, ids []string) error {
	const chunkSize = 100
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := s.db.WithContext(ctx).
			Delete(&models.Requirement{}, "id IN ?", ids[start:end]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SearchRelated 관련 요구사항 검색. 숫자 입력이면 display_id 일치도 함께 찾는다.
func (s *Service) SearchRelated(ctx context.Context, query, excludeID string, limit int) ([]models.Requirement, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 8
	}

	pattern := "%" + query + "%"
	q := s.db.WithContext(ctx).Preload("System").Limit(limit)
	if num, err := strconv.Atoi(query); err == nil {
		q = q.Where("feature_name LIKE ? OR display_id = ?", pattern, num)
	} else {
		q = q.Where("feature_name LIKE ? OR depth_0 LIKE ? OR depth_1 LIKE ?", pattern, pattern, pattern)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var requirements []models.Requirement
	if err := q.Find(&requirements).Error; err != nil {
		return nil, err
	}
	return requirements, nil
}

// DisplayName display_id 일괄 이름 조회 결과
type DisplayName struct {
	DisplayID  int    `json:"display_id"`
	Name       string `json:"name"`
	SystemName string `json:"system_name"`
}

// GetNamesByDisplayIDs 관련 항목 칩 렌더링용 일괄 이름 조회
func (s *Service) GetNamesByDisplayIDs(ctx context.Context, displayIDs []int) (map[int]DisplayName, error) {
	out := map[int]DisplayName{}
	if len(displayIDs) == 0 {
		return out, nil
	}

	var requirements []models.Requirement
	if err := s.db.WithContext(ctx).
		Preload("System").
		Where("display_id IN ?", displayIDs).
		Find(&requirements).Error; err != nil {
		return nil, err
	}

	for _, req := range requirements {
		if req.DisplayID == nil {
			continue
		}
		name := ""
		if req.FeatureName != nil {
			name = *req.FeatureName
		}
		out[*req.DisplayID] = DisplayName{
			DisplayID:  *req.DisplayID,
			Name:       name,
			SystemName: req.System.Name,
		}
	}
	return out, nil
}

func fieldValue(req *models.Requirement, field string) *string {
	switch field {
	case "depth_0":
		return req.Depth0
	case "depth_1":
		return req.Depth1
	case "depth_2":
		return req.Depth2
	case "depth_3":
		return req.Depth3
	case "feature_name":
		return req.FeatureName
	case "original_spec":
		return req.OriginalSpec
	case "current_policy":
		return req.CurrentPolicy
	case "policy_note":
		return req.PolicyNote
	case "precondition":
		return req.Precondition
	case "test_steps":
		return req.TestSteps
	case "expected_result":
		return req.ExpectedResult
	case "priority":
		return req.Priority
	case "related_ids":
		return req.RelatedIDs
	case "scenario_link":
		return req.ScenarioLink
	case "backlog_link":
		return req.BacklogLink
	}
	return nil
}

func toStringPtr(v interface{}) *string {
	if v == nil {
		return nil
	}
	switch s := v.(type) {
	case string:
		return &s
	case *string:
		return s
	default:
		str := fmt.Sprintf("%v", v)
		return &str
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
