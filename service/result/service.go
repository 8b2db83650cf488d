/*
 * @module service/result/service
 * @description 테스트 결과 서비스 - (요구사항, 사이클) 단위 업서트 상태 기계, 이슈 플래그 재계산, 재테스트 사유, 시나리오 결과
 * @architecture 분층 아키텍처 - 업무 서비스층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 상태 기록(업서트) -> 파생 플래그 재계산 -> 상태 전이 감사로그 -> 집계 반영
 * @rules (requirement_id, cycle_id) 유일, 미테스트 기록은 행 삭제가 아닌 상태값 저장, 감사로그 실패는 주 저장을 막지 않는다
 * @dependencies qatrack-service/service/models, gorm.io/gorm, gorm.io/gorm/clause
 * @refs service/models/qa.go, service/models/scenario.go
 */

package result

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"qatrack-service/service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service 테스트 결과 서비스
type Service struct {
	db *gorm.DB
}

// NewService 테스트 결과 서비스 생성
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordInput 결과 기록 입력
type RecordInput struct {
	RequirementID string               `json:"requirement_id"`
	CycleID       string               `json:"cycle_id"`
	Status        string               `json:"status"`
	Tester        *string              `json:"tester"`
	IssueIDs      *string              `json:"issue_ids"`
	IssueItems    models.IssueItemList `json:"issue_items"`
	Note          *string              `json:"note"`
}

// Record 결과 업서트. 같은 (요구사항, 사이클) 쌍은 항상 한 행을 갱신한다.
// 동시 기록은 last-write-wins 로 수렴한다.
func (s *Service) Record(ctx context.Context, input RecordInput) (*models.TestResult, error) {
	if !models.IsValidStatus(input.Status) {
		return nil, fmt.Errorf("유효하지 않은 상태값: %s", input.Status)
	}

	now := time.Now()
	row := &models.TestResult{
		RequirementID: input.RequirementID,
		CycleID:       input.CycleID,
		Status:        input.Status,
		Tester:        input.Tester,
		TestedAt:      &now,
		IssueIDs:      input.IssueIDs,
		IssueItems:    input.IssueItems,
		Note:          input.Note,
	}
	// 파생 플래그는 저장 시마다 항목 전체로부터 재계산한다
	row.IssueRaised = input.IssueItems.AllRaised()
	row.IssueFixed = input.IssueItems.AllFixed()

	oldStatus := models.StatusUntested
	var existing models.TestResult
	err := s.db.WithContext(ctx).
		Where("requirement_id = ? AND cycle_id = ?", input.RequirementID, input.CycleID).
		First(&existing).Error
	if err == nil {
		oldStatus = existing.Status
		// 갱신 경로: 저장된 행의 식별자와 충돌 갱신이 건드리지 않는 필드를 유지한다
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		row.RetestReason = existing.RetestReason
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "requirement_id"}, {Name: "cycle_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "tester", "tested_at", "issue_ids",
			"issue_items", "issue_raised", "issue_fixed", "note",
		}),
	}).Create(row).Error; err != nil {
		return nil, err
	}

	if oldStatus != input.Status {
		s.logStatusChange(ctx, input.RequirementID, oldStatus, input.Status, input.Tester)
	}
	return row, nil
}

// logStatusChange 상태 전이를 변경 이력에 append. 실패는 진단 로그만 남긴다.
func (s *Service) logStatusChange(ctx context.Context, requirementID, oldStatus, newStatus string, tester *string) {
	change := &models.RequirementChange{
		RequirementID: requirementID,
		ChangedField:  "status",
		OldValue:      &oldStatus,
		NewValue:      &newStatus,
		ChangeReason:  tester,
	}
	if err := s.db.WithContext(ctx).Create(change).Error; err != nil {
		slog.Warn("상태 전이 이력 적재 실패", "requirement_id", requirementID, "error", err)
	}
}

// GetByPair (요구사항, 사이클) 결과 단건 조회. 행이 없으면 nil, nil.
func (s *Service) GetByPair(ctx context.Context, requirementID, cycleID string) (*models.TestResult, error) {
	var result models.TestResult
	err := s.db.WithContext(ctx).
		Where("requirement_id = ? AND cycle_id = ?", requirementID, cycleID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByCycle 사이클의 전체 결과 행
func (s *Service) ListByCycle(ctx context.Context, cycleID string) ([]models.TestResult, error) {
	var results []models.TestResult
	if err := s.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SetRetestReason 재테스트 사유 설정/해제. 상태 전이와 독립이며 행이 없으면 미테스트 행을 만든다.
// reason 이 nil 이면 해제를 의미한다.
func (s *Service) SetRetestReason(ctx context.Context, requirementID, cycleID string, reason *string) (*models.TestResult, error) {
	value := ""
	if reason != nil {
		value = *reason
	}
	if !models.IsValidRetestReason(value) {
		return nil, fmt.Errorf("유효하지 않은 재테스트 사유: %s", value)
	}

	existing, err := s.GetByPair(ctx, requirementID, cycleID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		row := &models.TestResult{
			RequirementID: requirementID,
			CycleID:       cycleID,
			Status:        models.StatusUntested,
			RetestReason:  reason,
		}
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.TestResult{}).
		Where("id = ?", existing.ID).
		Update("retest_reason", reason).Error; err != nil {
		return nil, err
	}
	existing.RetestReason = reason
	return existing, nil
}

// UpdateIssueItems 이슈 항목 체크리스트 교체 + 파생 플래그 재계산. 상태는 바꾸지 않는다.
func (s *Service) UpdateIssueItems(ctx context.Context, requirementID, cycleID string, items models.IssueItemList) (*models.TestResult, error) {
	existing, err := s.GetByPair(ctx, requirementID, cycleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, gorm.ErrRecordNotFound
	}

	updates := map[string]interface{}{
		"issue_items":  items,
		"issue_raised": items.AllRaised(),
		"issue_fixed":  items.AllFixed(),
	}
	if err := s.db.WithContext(ctx).
		Model(&models.TestResult{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	existing.IssueItems = items
	existing.IssueRaised = items.AllRaised()
	existing.IssueFixed = items.AllFixed()
	return existing, nil
}

// ScenarioRecordInput 시나리오 결과 기록 입력
type ScenarioRecordInput struct {
	ScenarioID string               `json:"scenario_id"`
	CycleID    string               `json:"cycle_id"`
	Status     string               `json:"status"`
	Tester     *string              `json:"tester"`
	Note       *string              `json:"note"`
	IssueItems models.IssueItemList `json:"issue_items"`
}

// RecordScenario 시나리오 결과 업서트. (scenario_id, cycle_id) 쌍 유일성은 요구사항 결과와 동일하다.
func (s *Service) RecordScenario(ctx context.Context, input ScenarioRecordInput) (*models.ScenarioResult, error) {
	if !models.IsValidStatus(input.Status) {
		return nil, fmt.Errorf("유효하지 않은 상태값: %s", input.Status)
	}

	now := time.Now()
	row := &models.ScenarioResult{
		ScenarioID: input.ScenarioID,
		CycleID:    input.CycleID,
		Status:     input.Status,
		Tester:     input.Tester,
		TestedAt:   &now,
		Note:       input.Note,
		IssueItems: input.IssueItems,
	}

	var existing models.ScenarioResult
	err := s.db.WithContext(ctx).
		Where("scenario_id = ? AND cycle_id = ?", input.ScenarioID, input.CycleID).
		First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scenario_id"}, {Name: "cycle_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "tester", "tested_at", "note", "issue_items",
		}),
	}).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListScenarioResults 사이클의 시나리오 결과 행
func (s *Service) ListScenarioResults(ctx context.Context, cycleID string) ([]models.ScenarioResult, error) {
	var results []models.ScenarioResult
	if err := s.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
