/*
 * @module service/models/status
 * @description 테스트 상태·우선순위·이슈 항목 등 QA 도메인 공통 상수와 값 타입 정의
 * @architecture 분층 아키텍처 - 데이터 모델층
 * @documentReference ai_docs/model.md
 * @stateFlow 미테스트 -> {Pass, Fail, Block, In Progress} 자유 전이
 * @rules 결과 행이 없으면 상태는 미테스트로 간주, 상태 랭크는 명시적 테이블로만 비교
 * @dependencies encoding/json, database/sql/driver
 * @refs ai_docs/requirements.md
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// 테스트 상태 5종. 결과 행 부재는 StatusUntested 와 동일하게 취급한다.
const (
	StatusPass       = "Pass"
	StatusFail       = "Fail"
	StatusBlock      = "Block"
	StatusInProgress = "In Progress"
	StatusUntested   = "미테스트"
)

// TestStatuses 전체 상태 목록 (집계 버킷 순서 고정)
var TestStatuses = []string{StatusPass, StatusFail, StatusBlock, StatusInProgress, StatusUntested}

// IsValidStatus 알려진 5개 버킷인지 검사
func IsValidStatus(s string) bool {
	switch s {
	case StatusPass, StatusFail, StatusBlock, StatusInProgress, StatusUntested:
		return true
	}
	return false
}

// StatusRank 상태 정렬 랭크 (사전순 아님)
var StatusRank = map[string]int{
	StatusPass:       0,
	StatusInProgress: 1,
	StatusBlock:      2,
	StatusFail:       3,
	StatusUntested:   4,
}

// 우선순위 (원본 한국어 값 그대로 저장)
const (
	PriorityHigh   = "높음"
	PriorityMedium = "중간"
	PriorityLow    = "낮음"
)

// PriorityRank 우선순위 정렬 랭크
var PriorityRank = map[string]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// 재테스트 사유
const (
	RetestReasonUIUX   = "UI/UX 변경"
	RetestReasonPolicy = "정책 변경"
	RetestReasonOther  = "기타"
)

// IsValidRetestReason 재테스트 사유 검사 (빈 값은 해제 의미로 허용)
func IsValidRetestReason(r string) bool {
	switch r {
	case "", RetestReasonUIUX, RetestReasonPolicy, RetestReasonOther:
		return true
	}
	return false
}

// 이슈 심각도
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// 시나리오 유형
const (
	ScenarioTypeUnit        = "unit"
	ScenarioTypeIntegration = "integration"
	ScenarioTypeE2E         = "e2e"
)

// 시나리오 상태
const (
	ScenarioStatusActive     = "active"
	ScenarioStatusDraft      = "draft"
	ScenarioStatusDeprecated = "deprecated"
)

// IsValidScenarioType 시나리오 유형 검사
func IsValidScenarioType(t string) bool {
	switch t {
	case ScenarioTypeUnit, ScenarioTypeIntegration, ScenarioTypeE2E:
		return true
	}
	return false
}

// IsValidScenarioStatus 시나리오 상태 검사
func IsValidScenarioStatus(s string) bool {
	switch s {
	case ScenarioStatusActive, ScenarioStatusDraft, ScenarioStatusDeprecated:
		return true
	}
	return false
}

// IssueItem 테스트 결과에 내장되는 개별 결함 항목.
// severity 빈 문자열은 미지정 의미.
type IssueItem struct {
	Text     string `json:"text"`
	Raised   bool   `json:"raised"`
	Fixed    bool   `json:"fixed"`
	IssueNo  string `json:"issueNo,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// IssueItemList JSONB 로 저장되는 이슈 항목 목록
type IssueItemList []IssueItem

func (l *IssueItemList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("타입 단언 실패: []byte 또는 string 아님")
	}
	return json.Unmarshal(bytes, l)
}

func (l IssueItemList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]IssueItem{})
	}
	return json.Marshal(l)
}

// AllRaised 목록의 모든 항목이 raised 인지. 빈 목록은 false.
func (l IssueItemList) AllRaised() bool {
	if len(l) == 0 {
		return false
	}
	for _, item := range l {
		if !item.Raised {
			return false
		}
	}
	return true
}

// AllFixed 목록의 모든 항목이 fixed 인지. 빈 목록은 false.
func (l IssueItemList) AllFixed() bool {
	if len(l) == 0 {
		return false
	}
	for _, item := range l {
		if !item.Fixed {
			return false
		}
	}
	return true
}

// CountRaised raised 항목 수 (item 기반 지표)
func (l IssueItemList) CountRaised() int {
	n := 0
	for _, item := range l {
		if item.Raised {
			n++
		}
	}
	return n
}

// CountFixed fixed 항목 수 (item 기반 지표)
func (l IssueItemList) CountFixed() int {
	n := 0
	for _, item := range l {
		if item.Fixed {
			n++
		}
	}
	return n
}
