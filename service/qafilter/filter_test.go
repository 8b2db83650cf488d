/*
 * @module service/qafilter/filter_test
 * @description 필터 리듀서/술어/정렬 단위 테스트
 * @architecture 테스트층 - 단위 테스트
 */

package qafilter

import (
	"testing"

	"qatrack-service/service/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func sampleRequirements() []models.Requirement {
	return []models.Requirement{
		{ID: "r1", SystemID: "s1", Depth0: strPtr("주문"), Depth1: strPtr("주문생성"), Depth2: strPtr("장바구니")},
		{ID: "r2", SystemID: "s1", Depth0: strPtr("주문"), Depth1: strPtr("주문취소")},
		{ID: "r3", SystemID: "s2", Depth0: strPtr("정산"), Depth1: strPtr("정산내역")},
	}
}

func TestBuildDepthOptions(t *testing.T) {
	opts := BuildDepthOptions(sampleRequirements(), nil)

	assert.Equal(t, []string{"정산", "주문"}, opts.Depth0)
	assert.Equal(t, []string{"주문생성", "주문취소"}, opts.Depth1ByParent["주문"])
	assert.Equal(t, []string{"장바구니"}, opts.Depth2ByParent["주문생성"])

	// 시스템 제한 시 해당 시스템 관측값만
	limited := BuildDepthOptions(sampleRequirements(), []string{"s2"})
	assert.Equal(t, []string{"정산"}, limited.Depth0)
}

func TestReduce_ToggleAddsAndRemoves(t *testing.T) {
	opts := BuildDepthOptions(sampleRequirements(), nil)

	state := Reduce(State{}, Action{Type: ActionToggleStatus, Value: models.StatusFail}, opts)
	assert.Equal(t, []string{models.StatusFail}, state.Statuses)

	state = Reduce(state, Action{Type: ActionToggleStatus, Value: models.StatusFail}, opts)
	assert.Empty(t, state.Statuses)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	opts := BuildDepthOptions(sampleRequirements(), nil)
	original := State{Statuses: []string{models.StatusPass}}

	_ = Reduce(original, Action{Type: ActionToggleStatus, Value: models.StatusFail}, opts)

	assert.Equal(t, []string{models.StatusPass}, original.Statuses)
}

func TestReduce_CascadePruning(t *testing.T) {
	opts := BuildDepthOptions(sampleRequirements(), nil)

	// 주문 선택 -> 주문생성 선택 -> 장바구니 선택
	state := State{}
	state = Reduce(state, Action{Type: ActionToggleDepth0, Value: "주문"}, opts)
	state = Reduce(state, Action{Type: ActionToggleDepth1, Value: "주문생성"}, opts)
	state = Reduce(state, Action{Type: ActionToggleDepth2, Value: "장바구니"}, opts)
	assert.Equal(t, []string{"장바구니"}, state.Depth2)

	// 유일한 부모 주문 해제 -> 남은 상위 선택이 없으므로 하위 선택 전부 제거
	state = Reduce(state, Action{Type: ActionToggleDepth0, Value: "주문"}, opts)
	assert.Empty(t, state.Depth0)
	assert.Empty(t, state.Depth1)
	assert.Empty(t, state.Depth2)
}

func TestReduce_OrphanedChildSelectionIsRemoved(t *testing.T) {
	opts := BuildDepthOptions(sampleRequirements(), nil)

	state := State{}
	state = Reduce(state, Action{Type: ActionToggleDepth0, Value: "주문"}, opts)
	state = Reduce(state, Action{Type: ActionToggleDepth0, Value: "정산"}, opts)
	state = Reduce(state, Action{Type: ActionToggleDepth1, Value: "주문생성"}, opts)
	state = Reduce(state, Action{Type: ActionToggleDepth2, Value: "장바구니"}, opts)

	// 주문만 해제해도 남은 부모 정산 아래에 주문생성이 없으므로 고아가 되어 제거된다
	state = Reduce(state, Action{Type: ActionToggleDepth0, Value: "주문"}, opts)
	assert.Equal(t, []string{"정산"}, state.Depth0)
	assert.Empty(t, state.Depth1)
	assert.Empty(t, state.Depth2)
}

func TestReduce_SortToggleFlipsDirection(t *testing.T) {
	opts := DepthOptions{}

	state := Reduce(State{}, Action{Type: ActionSetSort, Value: SortByPriority}, opts)
	assert.Equal(t, SortByPriority, state.SortField)
	assert.True(t, state.SortAsc)

	state = Reduce(state, Action{Type: ActionSetSort, Value: SortByPriority}, opts)
	assert.False(t, state.SortAsc)
}

func TestMatches_MultiSelectSemantics(t *testing.T) {
	req := &models.Requirement{ID: "r1", SystemID: "s1", Depth0: strPtr("주문"), Priority: strPtr(models.PriorityHigh)}
	result := &models.TestResult{Status: models.StatusFail}

	// 빈 선택 = 무제약
	assert.True(t, Matches(State{}, req, result))

	// 필드 내 OR
	assert.True(t, Matches(State{Statuses: []string{models.StatusPass, models.StatusFail}}, req, result))

	// 필드 간 AND
	assert.False(t, Matches(State{
		Statuses:  []string{models.StatusFail},
		SystemIDs: []string{"다른시스템"},
	}, req, result))
}

func TestMatches_MissingResultIsUntested(t *testing.T) {
	req := &models.Requirement{ID: "r1", SystemID: "s1"}

	assert.True(t, Matches(State{Statuses: []string{models.StatusUntested}}, req, nil))
	assert.False(t, Matches(State{Statuses: []string{models.StatusPass}}, req, nil))
}

func TestMatches_IDRangeExcludesNilDisplayID(t *testing.T) {
	withID := &models.Requirement{ID: "r1", SystemID: "s1", DisplayID: intPtr(5)}
	withoutID := &models.Requirement{ID: "r2", SystemID: "s1"}
	state := State{IDFrom: intPtr(1), IDTo: intPtr(10)}

	assert.True(t, Matches(state, withID, nil))
	assert.False(t, Matches(state, withoutID, nil))
	assert.False(t, Matches(State{IDFrom: intPtr(6)}, withID, nil))
}

func TestMatches_ScenarioPresence(t *testing.T) {
	withScenario := &models.Requirement{ID: "r1", SystemID: "s1", TestSteps: strPtr("1. 로그인")}
	withoutScenario := &models.Requirement{ID: "r2", SystemID: "s1"}

	assert.True(t, Matches(State{Scenario: ScenarioHas}, withScenario, nil))
	assert.False(t, Matches(State{Scenario: ScenarioHas}, withoutScenario, nil))
	assert.True(t, Matches(State{Scenario: ScenarioNone}, withoutScenario, nil))
	assert.False(t, Matches(State{Scenario: ScenarioNone}, withScenario, nil))
}

func TestMatches_SearchCaseInsensitive(t *testing.T) {
	req := &models.Requirement{
		ID: "r1", SystemID: "s1",
		FeatureName:  strPtr("주문 Cancel 처리"),
		OriginalSpec: strPtr("특정 조건에서 주문을 취소한다"),
	}

	assert.True(t, Matches(State{Search: "cancel"}, req, nil))
	assert.True(t, Matches(State{Search: "취소"}, req, nil))
	assert.False(t, Matches(State{Search: "환불"}, req, nil))
}

func TestMatches_SeverityRequiresMatchingItem(t *testing.T) {
	req := &models.Requirement{ID: "r1", SystemID: "s1"}
	result := &models.TestResult{
		Status: models.StatusFail,
		IssueItems: models.IssueItemList{
			{Text: "a", Severity: models.SeverityCritical},
		},
	}

	assert.True(t, Matches(State{Severities: []string{models.SeverityCritical}}, req, result))
	assert.False(t, Matches(State{Severities: []string{models.SeverityLow}}, req, result))
	assert.False(t, Matches(State{Severities: []string{models.SeverityCritical}}, req, nil))
}

func TestApply_SortByPriorityWithNilsLast(t *testing.T) {
	requirements := []models.Requirement{
		{ID: "r1", SystemID: "s1", Priority: nil},
		{ID: "r2", SystemID: "s1", Priority: strPtr(models.PriorityLow)},
		{ID: "r3", SystemID: "s1", Priority: strPtr(models.PriorityHigh)},
	}

	out := Apply(State{SortField: SortByPriority, SortAsc: true}, requirements, nil)

	assert.Equal(t, "r3", out[0].ID)
	assert.Equal(t, "r2", out[1].ID)
	assert.Equal(t, "r1", out[2].ID)
}

func TestApply_SortByStatusRank(t *testing.T) {
	requirements := []models.Requirement{
		{ID: "r1", SystemID: "s1"},
		{ID: "r2", SystemID: "s1"},
		{ID: "r3", SystemID: "s1"},
	}
	index := map[string]*models.TestResult{
		"r1": {Status: models.StatusFail},
		"r3": {Status: models.StatusPass},
	}

	out := Apply(State{SortField: SortByStatus, SortAsc: true}, requirements, index)

	// Pass < Fail < 미테스트 (랭크 테이블 순)
	assert.Equal(t, "r3", out[0].ID)
	assert.Equal(t, "r1", out[1].ID)
	assert.Equal(t, "r2", out[2].ID)
}
