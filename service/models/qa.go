/*
 * @module service/models/qa
 * @description QA 추적 핵심 모델 정의 - 시스템, 테스트 사이클, 요구사항, 테스트 결과, 변경 이력, 진행률 스냅샷
 * @architecture 분층 아키텍처 - 데이터 모델층
 * @documentReference ai_docs/model.md
 * @stateFlow 요구사항 등록 -> 사이클별 결과 기록 -> 변경 이력 적재 -> 스냅샷 집계
 * @rules (requirement_id, cycle_id) 결과 행은 유일, requirement_changes 는 append-only
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs ai_docs/requirements.md
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// System 테스트 대상 시스템 (쇼핑몰/공급사/관리자). 생성 후 불변.
type System struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"not null;unique" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate 생성 전 훅
func (s *System) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TestCycle 테스트 사이클. 모든 결과는 정확히 하나의 사이클에 속한다.
type TestCycle struct {
	ID        string     `gorm:"type:uuid;primary_key" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate 생성 전 훅
func (c *TestCycle) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Requirement 요구사항(테스트 항목 리프). depth_0..3 은 업무 영역 분류 경로.
// related_ids 는 display_id 콤마 문자열(비정규화, 양방향 미보장 - 원본 설계 유지).
type Requirement struct {
	ID              string     `gorm:"type:uuid;primary_key" json:"id"`
	SystemID        string     `gorm:"not null;index" json:"system_id"`
	Depth0          *string    `gorm:"column:depth_0" json:"depth_0"`
	Depth1          *string    `gorm:"column:depth_1" json:"depth_1"`
	Depth2          *string    `gorm:"column:depth_2" json:"depth_2"`
	Depth3          *string    `gorm:"column:depth_3" json:"depth_3"`
	FeatureName     *string    `json:"feature_name"`
	OriginalSpec    *string    `json:"original_spec"`
	CurrentPolicy   *string    `json:"current_policy"`
	PolicyNote      *string    `json:"policy_note"`
	PolicyUpdatedAt *time.Time `json:"policy_updated_at"`
	Precondition    *string    `json:"precondition"`
	TestSteps       *string    `json:"test_steps"`
	ExpectedResult  *string    `json:"expected_result"`
	Priority        *string    `json:"priority"`
	DisplayID       *int       `gorm:"uniqueIndex" json:"display_id"`
	RelatedIDs      *string    `gorm:"column:related_ids" json:"related_ids"`
	ScenarioLink    *string    `json:"scenario_link"`
	BacklogLink     *string    `json:"backlog_link"`
	CreatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// 연관 관계
	System      System       `gorm:"foreignKey:SystemID" json:"system,omitempty"`
	TestResults []TestResult `gorm:"foreignKey:RequirementID" json:"test_results,omitempty"`
}

// BeforeCreate 생성 전 훅
func (r *Requirement) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// DepthPath depth_0..3 중 값이 있는 구간을 " > " 로 이은 경로 문자열
func (r *Requirement) DepthPath() string {
	path := ""
	for _, d := range []*string{r.Depth0, r.Depth1, r.Depth2, r.Depth3} {
		if d == nil || *d == "" {
			continue
		}
		if path != "" {
			path += " > "
		}
		path += *d
	}
	return path
}

// TestResult (requirement, cycle) 쌍당 최대 1건의 테스트 결과.
// issue_raised/issue_fixed 는 issue_items 전체 플래그로부터 저장 시 재계산되는 파생값.
type TestResult struct {
	ID            string        `gorm:"type:uuid;primary_key" json:"id"`
	RequirementID string        `gorm:"not null;uniqueIndex:idx_results_req_cycle" json:"requirement_id"`
	CycleID       string        `gorm:"not null;uniqueIndex:idx_results_req_cycle;index" json:"cycle_id"`
	Status        string        `gorm:"not null" json:"status"`
	Tester        *string       `json:"tester"`
	TestedAt      *time.Time    `json:"tested_at"`
	IssueIDs      *string       `gorm:"column:issue_ids" json:"issue_ids"`
	IssueRaised   bool          `gorm:"not null;default:false" json:"issue_raised"`
	IssueFixed    bool          `gorm:"not null;default:false" json:"issue_fixed"`
	IssueItems    IssueItemList `gorm:"type:jsonb" json:"issue_items"`
	RetestReason  *string       `json:"retest_reason"`
	Note          *string       `json:"note"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate 생성 전 훅
func (t *TestResult) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// RequirementChange 요구사항 변경 감사 로그. append-only, 절대 수정하지 않는다.
type RequirementChange struct {
	ID            string    `gorm:"type:uuid;primary_key" json:"id"`
	RequirementID string    `gorm:"not null;index" json:"requirement_id"`
	ChangedField  string    `gorm:"not null" json:"changed_field"`
	OldValue      *string   `json:"old_value"`
	NewValue      *string   `json:"new_value"`
	ChangeReason  *string   `json:"change_reason"`
	ChangedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"changed_at"`
}

// BeforeCreate 생성 전 훅
func (c *RequirementChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ProgressSnapshot 사이클별 일일 진행률 스냅샷 (번다운 추이용).
// system_id 가 비어 있으면 사이클 전체 집계.
type ProgressSnapshot struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	CycleID      string    `gorm:"not null;index" json:"cycle_id"`
	SystemID     *string   `json:"system_id"`
	PassCount    int       `gorm:"not null;default:0" json:"pass_count"`
	FailCount    int       `gorm:"not null;default:0" json:"fail_count"`
	BlockCount   int       `gorm:"not null;default:0" json:"block_count"`
	InProgress   int       `gorm:"not null;default:0" json:"in_progress_count"`
	Untested     int       `gorm:"not null;default:0" json:"untested_count"`
	Total        int       `gorm:"not null;default:0" json:"total"`
	ProgressRate int       `gorm:"not null;default:0" json:"progress_rate"`
	SnappedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"snapped_at"`
}

// BeforeCreate 생성 전 훅
func (p *ProgressSnapshot) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
