/*
 * @module service/scenario/service
 * @description 시나리오 서비스 - CRUD, 요구사항 연결 전체 교체, E2E 구성 해석/갱신
 * @architecture 분층 아키텍처 - 업무 서비스층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 시나리오 작성 -> 요구사항 연결 -> 구성 엣지 갱신(구조 검증 선행) -> 양방향 조회
 * @rules 구성 엣지는 integration(자식) -> e2e(부모)만, 검증 실패 시 기존 엣지를 그대로 둔다, 교체는 트랜잭션
 * @dependencies qatrack-service/service/models, gorm.io/gorm
 * @refs service/models/scenario.go
 */

package scenario

import (
	"context"
	"errors"
	"fmt"

	"qatrack-service/service/models"

	"gorm.io/gorm"
)

// 구성 구조 검증 오류
var (
	ErrParentNotE2E         = errors.New("구성 부모는 e2e 시나리오여야 합니다")
	ErrChildNotIntegration  = errors.New("구성 자식은 integration 시나리오여야 합니다")
	ErrCompositionNotExists = errors.New("존재하지 않는 시나리오가 구성에 포함되어 있습니다")
)

// Service 시나리오 서비스
type Service struct {
	db *gorm.DB
}

// NewService 시나리오 서비스 생성
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput 시나리오 생성 입력
type CreateInput struct {
	Title           string                  `json:"title"`
	ScenarioType    string                  `json:"scenario_type"`
	Status          string                  `json:"status"`
	SystemIDs       models.JSONBStringArray `json:"system_ids"`
	BusinessContext *string                 `json:"business_context"`
	Precondition    *string                 `json:"precondition"`
	Steps           string                  `json:"steps"`
	ExpectedResult  string                  `json:"expected_result"`
	AIGenerated     bool                    `json:"ai_generated"`
}

// Create 시나리오 생성
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.TestScenario, error) {
	if input.Title == "" {
		return nil, errors.New("시나리오 제목은 필수입니다")
	}
	if !models.IsValidScenarioType(input.ScenarioType) {
		return nil, fmt.Errorf("유효하지 않은 시나리오 유형: %s", input.ScenarioType)
	}
	if input.Status != "" && !models.IsValidScenarioStatus(input.Status) {
		return nil, fmt.Errorf("유효하지 않은 시나리오 상태: %s", input.Status)
	}

	scenario := &models.TestScenario{
		Title:           input.Title,
		ScenarioType:    input.ScenarioType,
		Status:          input.Status,
		SystemIDs:       input.SystemIDs,
		BusinessContext: input.BusinessContext,
		Precondition:    input.Precondition,
		Steps:           input.Steps,
		ExpectedResult:  input.ExpectedResult,
		AIGenerated:     input.AIGenerated,
	}
	if err := s.db.WithContext(ctx).Create(scenario).Error; err != nil {
		return nil, err
	}
	return scenario, nil
}

// GetByID 단건 조회 (요구사항 연결 포함, order_index 순)
func (s *Service) GetByID(ctx context.Context, id string) (*models.TestScenario, error) {
	var scenario models.TestScenario
	if err := s.db.WithContext(ctx).
		Preload("ScenarioRequirements", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		Preload("ScenarioRequirements.Requirement").
		First(&scenario, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &scenario, nil
}

// List 시나리오 목록. 유형/상태/검색 필터는 빈 값이면 무시한다.
func (s *Service) List(ctx context.Context, scenarioType, status, search string) ([]models.TestScenario, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if scenarioType != "" {
		query = query.Where("scenario_type = ?", scenarioType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var scenarios []models.TestScenario
	if err := query.Find(&scenarios).Error; err != nil {
		return nil, err
	}
	return scenarios, nil
}

// Update 시나리오 부분 수정
func (s *Service) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if status, ok := updates["status"].(string); ok && !models.IsValidScenarioStatus(status) {
		return fmt.Errorf("유효하지 않은 시나리오 상태: %s", status)
	}
	if st, ok := updates["scenario_type"].(string); ok && !models.IsValidScenarioType(st) {
		return fmt.Errorf("유효하지 않은 시나리오 유형: %s", st)
	}
	return s.db.WithContext(ctx).
		Model(&models.TestScenario{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete 시나리오 삭제. 연결/구성/결과 행도 함께 정리한다.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ScenarioRequirement{}, "scenario_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ScenarioComposition{}, "parent_id = ? OR child_id = ?", id, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ScenarioResult{}, "scenario_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TestScenario{}, "id = ?", id).Error
	})
}

// RequirementLink 요구사항 연결 교체 입력
type RequirementLink struct {
	RequirementID string  `json:"requirement_id"`
	VerifyNote    *string `json:"verify_note"`
}

// SetRequirements 시나리오의 요구사항 연결을 전체 교체. order_index 는 입력 순서로 다시 매긴다.
func (s *Service) SetRequirements(ctx context.Context, scenarioID string, links []RequirementLink) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ScenarioRequirement{}, "scenario_id = ?", scenarioID).Error; err != nil {
			return err
		}
		for i, link := range links {
			row := &models.ScenarioRequirement{
				ScenarioID:    scenarioID,
				RequirementID: link.RequirementID,
				OrderIndex:    i,
				VerifyNote:    link.VerifyNote,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ChildEntry 부모 관점의 자식 항목. cycle_id 가 주어지면 해당 사이클의 결과를 함께 담는다.
type ChildEntry struct {
	models.TestScenario
	Result *models.ScenarioResult `json:"result,omitempty"`
}

// GetChildren e2e 부모의 integration 자식 목록 (order_index 순).
// cycleID 가 비어 있지 않으면 각 자식에 그 사이클의 시나리오 결과를 붙인다.
func (s *Service) GetChildren(ctx context.Context, parentID, cycleID string) ([]ChildEntry, error) {
	var edges []models.ScenarioComposition
	if err := s.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("order_index").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}

	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ChildID
	}

	var scenarios []models.TestScenario
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&scenarios).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.TestScenario, len(scenarios))
	for _, sc := range scenarios {
		byID[sc.ID] = sc
	}

	resultByID := map[string]*models.ScenarioResult{}
	if cycleID != "" {
		var results []models.ScenarioResult
		if err := s.db.WithContext(ctx).
			Where("cycle_id = ? AND scenario_id IN ?", cycleID, ids).
			Find(&results).Error; err != nil {
			return nil, err
		}
		for i := range results {
			resultByID[results[i].ScenarioID] = &results[i]
		}
	}

	// 엣지 순서대로 재배열 (IN 조회는 순서를 보장하지 않는다)
	out := make([]ChildEntry, 0, len(edges))
	for _, e := range edges {
		if sc, ok := byID[e.ChildID]; ok {
			out = append(out, ChildEntry{TestScenario: sc, Result: resultByID[e.ChildID]})
		}
	}
	return out, nil
}

// ParentEntry 자식 관점의 부모 항목. 그 부모 구성 안에서 자식이 갖는 order_index 를 담는다.
type ParentEntry struct {
	models.TestScenario
	OrderIndex int `json:"order_index"`
}

// GetParents integration 자식이 속한 e2e 부모 목록 (구성 order_index 순)
func (s *Service) GetParents(ctx context.Context, childID string) ([]ParentEntry, error) {
	var edges []models.ScenarioComposition
	if err := s.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("order_index").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}

	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ParentID
	}

	var parents []models.TestScenario
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&parents).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.TestScenario, len(parents))
	for _, p := range parents {
		byID[p.ID] = p
	}

	out := make([]ParentEntry, 0, len(edges))
	for _, e := range edges {
		if p, ok := byID[e.ParentID]; ok {
			out = append(out, ParentEntry{TestScenario: p, OrderIndex: e.OrderIndex})
		}
	}
	return out, nil
}

// SetChildren e2e 부모의 자식 구성을 전체 교체.
// 구조 검증(부모 e2e, 자식 전부 integration)이 모두 통과해야 기존 엣지를 건드린다.
func (s *Service) SetChildren(ctx context.Context, parentID string, childIDs []string) error {
	parent, err := s.loadTyped(ctx, parentID)
	if err != nil {
		return err
	}
	if parent.ScenarioType != models.ScenarioTypeE2E {
		return ErrParentNotE2E
	}
	if err := s.validateAllIntegration(ctx, childIDs); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ScenarioComposition{}, "parent_id = ?", parentID).Error; err != nil {
			return err
		}
		for i, childID := range childIDs {
			edge := &models.ScenarioComposition{ParentID: parentID, ChildID: childID, OrderIndex: i}
			if err := tx.Create(edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetParents integration 자식의 부모 구성을 전체 교체 (자식 관점 역방향 갱신).
// 새로 붙는 부모에서의 order_index 는 그 부모의 기존 자식 수 뒤에 이어 붙인다.
func (s *Service) SetParents(ctx context.Context, childID string, parentIDs []string) error {
	child, err := s.loadTyped(ctx, childID)
	if err != nil {
		return err
	}
	if child.ScenarioType != models.ScenarioTypeIntegration {
		return ErrChildNotIntegration
	}
	if err := s.validateAllE2E(ctx, parentIDs); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.ScenarioComposition
		if err := tx.Where("child_id = ?", childID).Find(&existing).Error; err != nil {
			return err
		}
		keep := map[string]bool{}
		for _, id := range parentIDs {
			keep[id] = true
		}

		for _, edge := range existing {
			if !keep[edge.ParentID] {
				if err := tx.Delete(&models.ScenarioComposition{}, "id = ?", edge.ID).Error; err != nil {
					return err
				}
			}
		}

		had := map[string]bool{}
		for _, edge := range existing {
			had[edge.ParentID] = true
		}
		for _, parentID := range parentIDs {
			if had[parentID] {
				continue
			}
			var count int64
			if err := tx.Model(&models.ScenarioComposition{}).
				Where("parent_id = ?", parentID).
				Count(&count).Error; err != nil {
				return err
			}
			edge := &models.ScenarioComposition{
				ParentID:   parentID,
				ChildID:    childID,
				OrderIndex: int(count),
			}
			if err := tx.Create(edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) loadTyped(ctx context.Context, id string) (*models.TestScenario, error) {
	var scenario models.TestScenario
	if err := s.db.WithContext(ctx).
		Select("id", "scenario_type").
		First(&scenario, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Service) validateAllIntegration(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var scenarios []models.TestScenario
	if err := s.db.WithContext(ctx).
		Select("id", "scenario_type").
		Where("id IN ?", ids).
		Find(&scenarios).Error; err != nil {
		return err
	}
	if len(scenarios) != len(uniqueIDs(ids)) {
		return ErrCompositionNotExists
	}
	for _, sc := range scenarios {
		if sc.ScenarioType != models.ScenarioTypeIntegration {
			return ErrChildNotIntegration
		}
	}
	return nil
}

func (s *Service) validateAllE2E(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var scenarios []models.TestScenario
	if err := s.db.WithContext(ctx).
		Select("id", "scenario_type").
		Where("id IN ?", ids).
		Find(&scenarios).Error; err != nil {
		return err
	}
	if len(scenarios) != len(uniqueIDs(ids)) {
		return ErrCompositionNotExists
	}
	for _, sc := range scenarios {
		if sc.ScenarioType != models.ScenarioTypeE2E {
			return ErrParentNotE2E
		}
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
