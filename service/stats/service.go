/*
 * @module service/stats/service
 * @description 통계 서비스 - 저장소에서 스냅샷 행을 읽어 집계 엔진에 공급하는 DB 연동층
 * @architecture 분층 아키텍처 - 업무 서비스층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 행 일괄 조회 -> 인덱싱 -> 집계 -> 뷰 모델 반환
 * @rules 연속된 두 조회가 일관된 결합 상태를 본다고 가정하지 않는다
 * @dependencies qatrack-service/service/models, gorm.io/gorm
 * @refs service/stats/aggregator.go
 */

package stats

import (
	"context"

	"qatrack-service/service/models"

	"gorm.io/gorm"
)

// Service 통계 서비스
type Service struct {
	db *gorm.DB
}

// NewService 통계 서비스 생성
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DashboardStats 대시보드 전체 집계
type DashboardStats struct {
	Total    StatusCount   `json:"total"`
	BySystem []SystemStats `json:"by_system"`
}

// GetDashboardStats 사이클 기준 전체/시스템별 상태 카운트와 진행률
func (s *Service) GetDashboardStats(ctx context.Context, cycleID string) (*DashboardStats, error) {
	var requirements []models.Requirement
	if err := s.db.WithContext(ctx).Select("id", "system_id").Find(&requirements).Error; err != nil {
		return nil, err
	}

	var results []models.TestResult
	if err := s.db.WithContext(ctx).
		Select("requirement_id", "cycle_id", "status").
		Where("cycle_id = ?", cycleID).
		Find(&results).Error; err != nil {
		return nil, err
	}

	var systems []models.System
	if err := s.db.WithContext(ctx).Order("created_at").Find(&systems).Error; err != nil {
		return nil, err
	}

	index := IndexResultsByEntity(results)
	ids := make([]string, len(requirements))
	for i, r := range requirements {
		ids[i] = r.ID
	}

	return &DashboardStats{
		Total:    ComputeStatusCounts(ids, func(id string) string { return StatusOf(index, id) }),
		BySystem: GroupBySystem(requirements, systems, index),
	}, nil
}

// GetDepthGroupStats (시스템, depth_0) 기능영역별 집계
func (s *Service) GetDepthGroupStats(ctx context.Context, cycleID string) ([]DepthGroupStat, error) {
	var requirements []models.Requirement
	if err := s.db.WithContext(ctx).
		Select("id", "system_id", "depth_0").
		Order("created_at").
		Find(&requirements).Error; err != nil {
		return nil, err
	}

	var results []models.TestResult
	if err := s.db.WithContext(ctx).
		Select("requirement_id", "status").
		Where("cycle_id = ?", cycleID).
		Find(&results).Error; err != nil {
		return nil, err
	}

	var systems []models.System
	if err := s.db.WithContext(ctx).Order("created_at").Find(&systems).Error; err != nil {
		return nil, err
	}

	return GroupByFeatureArea(requirements, systems, IndexResultsByEntity(results)), nil
}

// GetIssueStats Fail/Block 결과 기반 이슈 통계
func (s *Service) GetIssueStats(ctx context.Context, cycleID string) (*IssueStats, error) {
	var results []models.TestResult
	if err := s.db.WithContext(ctx).
		Where("cycle_id = ? AND status IN ?", cycleID, []string{models.StatusFail, models.StatusBlock}).
		Find(&results).Error; err != nil {
		return nil, err
	}

	stats := ComputeIssueStats(results)
	return &stats, nil
}

// GetScenarioStats active 시나리오의 전체/유형별 집계
func (s *Service) GetScenarioStats(ctx context.Context, cycleID string) (*ScenarioStats, error) {
	var scenarios []models.TestScenario
	if err := s.db.WithContext(ctx).
		Select("id", "scenario_type", "status").
		Find(&scenarios).Error; err != nil {
		return nil, err
	}

	var results []models.ScenarioResult
	if err := s.db.WithContext(ctx).
		Select("scenario_id", "cycle_id", "status").
		Where("cycle_id = ?", cycleID).
		Find(&results).Error; err != nil {
		return nil, err
	}

	stats := ComputeScenarioStats(scenarios, results, cycleID)
	return &stats, nil
}

// GetNextRecommended 해당 사이클에서 아직 결과가 없는 요구사항 상위 N건 (등록순)
func (s *Service) GetNextRecommended(ctx context.Context, cycleID string, limit int) ([]models.Requirement, error) {
	if limit <= 0 {
		limit = 5
	}

	var testedIDs []string
	if err := s.db.WithContext(ctx).
		Model(&models.TestResult{}).
		Where("cycle_id = ? AND status <> ?", cycleID, models.StatusUntested).
		Pluck("requirement_id", &testedIDs).Error; err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Preload("System").Order("created_at").Limit(limit)
	if len(testedIDs) > 0 {
		query = query.Where("id NOT IN ?", testedIDs)
	}

	var requirements []models.Requirement
	if err := query.Find(&requirements).Error; err != nil {
		return nil, err
	}
	return requirements, nil
}

// GetSnapshots 사이클의 진행률 스냅샷 추이 (오래된 순)
func (s *Service) GetSnapshots(ctx context.Context, cycleID string, systemID string) ([]models.ProgressSnapshot, error) {
	query := s.db.WithContext(ctx).Where("cycle_id = ?", cycleID)
	if systemID != "" {
		query = query.Where("system_id = ?", systemID)
	} else {
		query = query.Where("system_id IS NULL")
	}

	var snapshots []models.ProgressSnapshot
	if err := query.Order("snapped_at").Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}
