/*
 * @module service/models/scenario
 * @description 테스트 시나리오 모델 정의 - 시나리오, 요구사항 링크, E2E 구성, 시나리오 결과
 * @architecture 분층 아키텍처 - 데이터 모델층
 * @documentReference ai_docs/model.md
 * @stateFlow 시나리오 작성 -> 요구사항 연결 -> E2E 구성 -> 사이클별 결과 기록
 * @rules 구성 엣지는 integration(자식) -> e2e(부모)만 허용, 2단계 이상 중첩 금지
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/models/qa.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestScenario 테스트 시나리오. unit/integration 은 요구사항에 직접 연결되고
// e2e 는 integration 자식 구성으로만 검증 범위를 갖는다.
type TestScenario struct {
	ID              string           `gorm:"type:uuid;primary_key" json:"id"`
	Title           string           `gorm:"not null" json:"title"`
	ScenarioType    string           `gorm:"not null;index" json:"scenario_type"` // unit/integration/e2e
	Status          string           `gorm:"not null;default:'active'" json:"status"` // active/draft/deprecated
	SystemIDs       JSONBStringArray `gorm:"type:jsonb" json:"system_ids"`
	BusinessContext *string          `json:"business_context"`
	Precondition    *string          `json:"precondition"`
	Steps           string           `json:"steps"`
	ExpectedResult  string           `json:"expected_result"`
	AIGenerated     bool             `gorm:"not null;default:false" json:"ai_generated"`
	CreatedAt       time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// 연관 관계
	ScenarioRequirements []ScenarioRequirement `gorm:"foreignKey:ScenarioID" json:"scenario_requirements,omitempty"`
	ScenarioResults      []ScenarioResult      `gorm:"foreignKey:ScenarioID" json:"scenario_results,omitempty"`
}

// BeforeCreate 생성 전 훅
func (s *TestScenario) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = ScenarioStatusActive
	}
	return nil
}

// ScenarioRequirement 시나리오-요구사항 순서 있는 조인.
// order_index 는 표시/수행 순서만 의미한다.
type ScenarioRequirement struct {
	ID            string  `gorm:"type:uuid;primary_key" json:"id"`
	ScenarioID    string  `gorm:"not null;index" json:"scenario_id"`
	RequirementID string  `gorm:"not null;index" json:"requirement_id"`
	OrderIndex    int     `gorm:"not null;default:0" json:"order_index"`
	VerifyNote    *string `json:"verify_note"`

	Requirement Requirement `gorm:"foreignKey:RequirementID" json:"requirement,omitempty"`
}

// BeforeCreate 생성 전 훅
func (r *ScenarioRequirement) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// ScenarioComposition E2E(부모)-integration(자식) 순서 있는 다대다 조인.
// order_index 는 부모별 스코프라 같은 자식이 부모마다 다른 순번을 가질 수 있다.
type ScenarioComposition struct {
	ID         string `gorm:"type:uuid;primary_key" json:"id"`
	ParentID   string `gorm:"not null;index" json:"parent_id"`
	ChildID    string `gorm:"not null;index" json:"child_id"`
	OrderIndex int    `gorm:"not null;default:0" json:"order_index"`
}

// BeforeCreate 생성 전 훅
func (c *ScenarioComposition) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ScenarioResult (scenario, cycle) 쌍당 최대 1건의 시나리오 수행 결과.
type ScenarioResult struct {
	ID         string        `gorm:"type:uuid;primary_key" json:"id"`
	ScenarioID string        `gorm:"not null;uniqueIndex:idx_scenario_results_pair" json:"scenario_id"`
	CycleID    string        `gorm:"not null;uniqueIndex:idx_scenario_results_pair;index" json:"cycle_id"`
	Status     string        `gorm:"not null" json:"status"`
	Tester     *string       `json:"tester"`
	TestedAt   *time.Time    `json:"tested_at"`
	Note       *string       `json:"note"`
	IssueItems IssueItemList `gorm:"type:jsonb" json:"issue_items"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate 생성 전 훅
func (r *ScenarioResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
