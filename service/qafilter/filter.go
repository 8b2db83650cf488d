/*
 * @module service/qafilter/filter
 * @description 필터/쿼리 계층 - 불변 필터 상태와 단일 리듀서, depth cascade 옵션 산출, 행 술어, 정렬
 * @architecture 분층 아키텍처 - 업무 서비스층 (순수 계산)
 * @documentReference ai_docs/requirements.md
 * @stateFlow 액션 수신 -> 다음 상태 계산(cascade 가지치기 포함) -> 술어/정렬 적용
 * @rules 필드 내 OR·필드 간 AND, 행 매칭의 빈 선택은 무제약, depth 상위 해제 시 고아 하위 선택 제거
 * @dependencies qatrack-service/service/models, sort, strings
 * @refs service/stats/aggregator.go
 */

package qafilter

import (
	"sort"
	"strings"

	"qatrack-service/service/models"
)

// 정렬 필드
const (
	SortByDisplayID   = "display_id"
	SortByFeatureName = "feature_name"
	SortByPriority    = "priority"
	SortByStatus      = "status"
)

// 시나리오 보유 필터
const (
	ScenarioAny  = ""
	ScenarioHas  = "has"
	ScenarioNone = "none"
)

// State 불변 필터 상태. 변경은 항상 Reduce 를 통해서만 일어난다.
type State struct {
	SystemIDs  []string `json:"system_ids"`
	Depth0     []string `json:"depth_0"`
	Depth1     []string `json:"depth_1"`
	Depth2     []string `json:"depth_2"`
	Statuses   []string `json:"statuses"`
	Priorities []string `json:"priorities"`
	Severities []string `json:"severities"`
	IDFrom     *int     `json:"id_from"`
	IDTo       *int     `json:"id_to"`
	Scenario   string   `json:"scenario"` // ""/has/none
	Search     string   `json:"search"`
	SortField  string   `json:"sort_field"`
	SortAsc    bool     `json:"sort_asc"`
}

// 액션 종류
const (
	ActionToggleSystem   = "toggle_system"
	ActionToggleDepth0   = "toggle_depth_0"
	ActionToggleDepth1   = "toggle_depth_1"
	ActionToggleDepth2   = "toggle_depth_2"
	ActionToggleStatus   = "toggle_status"
	ActionTogglePriority = "toggle_priority"
	ActionToggleSeverity = "toggle_severity"
	ActionSetIDRange     = "set_id_range"
	ActionSetScenario    = "set_scenario"
	ActionSetSearch      = "set_search"
	ActionSetSort        = "set_sort"
	ActionReset          = "reset"
)

// Action 필터 상태 전이 입력
type Action struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	From  *int   `json:"from"`
	To    *int   `json:"to"`
}

// DepthOptions depth cascade 로 유효해진 선택지.
// Depth1ByParent[depth0] / Depth2ByParent[depth1] 는 관측값 기준, 정렬됨.
type DepthOptions struct {
	Depth0        []string            `json:"depth_0"`
	Depth1ByParent map[string][]string `json:"depth_1_by_parent"`
	Depth2ByParent map[string][]string `json:"depth_2_by_parent"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BuildDepthOptions 선택된 시스템 하에서 관측되는 depth 값 목록을 산출한다.
// systemIDs 가 비어 있으면 전체 행 대상.
func BuildDepthOptions(requirements []models.Requirement, systemIDs []string) DepthOptions {
	systemSet := toSet(systemIDs)

	opts := DepthOptions{
		Depth1ByParent: map[string][]string{},
		Depth2ByParent: map[string][]string{},
	}
	seen0 := map[string]bool{}
	seen1 := map[string]map[string]bool{}
	seen2 := map[string]map[string]bool{}

	for _, req := range requirements {
		if len(systemSet) > 0 && !systemSet[req.SystemID] {
			continue
		}
		d0, d1, d2 := deref(req.Depth0), deref(req.Depth1), deref(req.Depth2)
		if d0 != "" && !seen0[d0] {
			seen0[d0] = true
			opts.Depth0 = append(opts.Depth0, d0)
		}
		if d0 != "" && d1 != "" {
			if seen1[d0] == nil {
				seen1[d0] = map[string]bool{}
			}
			if !seen1[d0][d1] {
				seen1[d0][d1] = true
				opts.Depth1ByParent[d0] = append(opts.Depth1ByParent[d0], d1)
			}
		}
		if d1 != "" && d2 != "" {
			if seen2[d1] == nil {
				seen2[d1] = map[string]bool{}
			}
			if !seen2[d1][d2] {
				seen2[d1][d2] = true
				opts.Depth2ByParent[d1] = append(opts.Depth2ByParent[d1], d2)
			}
		}
	}

	sort.Strings(opts.Depth0)
	for k := range opts.Depth1ByParent {
		sort.Strings(opts.Depth1ByParent[k])
	}
	for k := range opts.Depth2ByParent {
		sort.Strings(opts.Depth2ByParent[k])
	}
	return opts
}

// ValidDepth1 선택된 depth_0 들 하에서 유효한 depth_1 합집합
func (o DepthOptions) ValidDepth1(selectedDepth0 []string) []string {
	return unionUnder(o.Depth1ByParent, selectedDepth0)
}

// ValidDepth2 선택된 depth_1 들 하에서 유효한 depth_2 합집합
func (o DepthOptions) ValidDepth2(selectedDepth1 []string) []string {
	return unionUnder(o.Depth2ByParent, selectedDepth1)
}

func unionUnder(byParent map[string][]string, parents []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range parents {
		for _, v := range byParent[p] {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Reduce 액션을 적용한 다음 상태를 반환한다. 입력 상태는 변경하지 않는다.
// depth 상위 선택 해제 시 도달 불가능해진 하위 선택을 모두 가지치기한다.
func Reduce(state State, action Action, opts DepthOptions) State {
	next := cloneState(state)

	switch action.Type {
	case ActionToggleSystem:
		next.SystemIDs = toggle(next.SystemIDs, action.Value)
	case ActionToggleDepth0:
		next.Depth0 = toggle(next.Depth0, action.Value)
	case ActionToggleDepth1:
		next.Depth1 = toggle(next.Depth1, action.Value)
	case ActionToggleDepth2:
		next.Depth2 = toggle(next.Depth2, action.Value)
	case ActionToggleStatus:
		next.Statuses = toggle(next.Statuses, action.Value)
	case ActionTogglePriority:
		next.Priorities = toggle(next.Priorities, action.Value)
	case ActionToggleSeverity:
		next.Severities = toggle(next.Severities, action.Value)
	case ActionSetIDRange:
		next.IDFrom, next.IDTo = action.From, action.To
	case ActionSetScenario:
		next.Scenario = action.Value
	case ActionSetSearch:
		next.Search = action.Value
	case ActionSetSort:
		if next.SortField == action.Value {
			next.SortAsc = !next.SortAsc
		} else {
			next.SortField = action.Value
			next.SortAsc = true
		}
	case ActionReset:
		return State{}
	}

	return pruneCascade(next, opts)
}

// pruneCascade 남은 상위 선택에서 도달할 수 없는 하위 선택 제거.
// 상위 선택이 완전히 비면 하위 선택도 함께 비운다.
func pruneCascade(state State, opts DepthOptions) State {
	if len(state.Depth0) == 0 {
		state.Depth1 = nil
		state.Depth2 = nil
		return state
	}
	state.Depth1 = keep(state.Depth1, toSet(opts.ValidDepth1(state.Depth0)))

	if len(state.Depth1) == 0 {
		state.Depth2 = nil
		return state
	}
	state.Depth2 = keep(state.Depth2, toSet(opts.ValidDepth2(state.Depth1)))
	return state
}

func cloneState(s State) State {
	s.SystemIDs = append([]string(nil), s.SystemIDs...)
	s.Depth0 = append([]string(nil), s.Depth0...)
	s.Depth1 = append([]string(nil), s.Depth1...)
	s.Depth2 = append([]string(nil), s.Depth2...)
	s.Statuses = append([]string(nil), s.Statuses...)
	s.Priorities = append([]string(nil), s.Priorities...)
	s.Severities = append([]string(nil), s.Severities...)
	return s
}

func toggle(values []string, v string) []string {
	for i, existing := range values {
		if existing == v {
			return append(values[:i:i], values[i+1:]...)
		}
	}
	return append(values, v)
}

func keep(values []string, valid map[string]bool) []string {
	var out []string
	for _, v := range values {
		if valid[v] {
			out = append(out, v)
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Matches 요구사항 행이 현재 필터를 통과하는지. result 는 해당 사이클의 결과(없으면 nil).
// 필드 내 OR, 필드 간 AND. 빈 선택 필드는 제약 없음.
func Matches(state State, req *models.Requirement, result *models.TestResult) bool {
	if !matchesOneOf(state.SystemIDs, req.SystemID) {
		return false
	}
	if !matchesOneOf(state.Depth0, deref(req.Depth0)) {
		return false
	}
	if !matchesOneOf(state.Depth1, deref(req.Depth1)) {
		return false
	}
	if !matchesOneOf(state.Depth2, deref(req.Depth2)) {
		return false
	}

	status := models.StatusUntested
	if result != nil {
		status = result.Status
	}
	if !matchesOneOf(state.Statuses, status) {
		return false
	}

	if len(state.Priorities) > 0 {
		priority := deref(req.Priority)
		if !containsStr(state.Priorities, priority) {
			return false
		}
	}

	if len(state.Severities) > 0 {
		if result == nil || !hasAnySeverity(result.IssueItems, state.Severities) {
			return false
		}
	}

	// ID 범위 필터: 활성화 시 display_id 없는 행은 제외
	if state.IDFrom != nil || state.IDTo != nil {
		if req.DisplayID == nil {
			return false
		}
		if state.IDFrom != nil && *req.DisplayID < *state.IDFrom {
			return false
		}
		if state.IDTo != nil && *req.DisplayID > *state.IDTo {
			return false
		}
	}

	switch state.Scenario {
	case ScenarioHas:
		if deref(req.Precondition) == "" && deref(req.TestSteps) == "" && deref(req.ExpectedResult) == "" {
			return false
		}
	case ScenarioNone:
		if deref(req.Precondition) != "" || deref(req.TestSteps) != "" || deref(req.ExpectedResult) != "" {
			return false
		}
	}

	if state.Search != "" && !matchesSearch(req, state.Search) {
		return false
	}
	return true
}

func matchesOneOf(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	return containsStr(selected, value)
}

func containsStr(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

func hasAnySeverity(items models.IssueItemList, severities []string) bool {
	for _, item := range items {
		if containsStr(severities, item.Severity) {
			return true
		}
	}
	return false
}

// matchesSearch 기능명 + depth_0..2 + 상세의 대소문자 무시 부분일치 (토큰화 없음)
func matchesSearch(req *models.Requirement, search string) bool {
	needle := strings.ToLower(search)
	for _, field := range []*string{req.FeatureName, req.Depth0, req.Depth1, req.Depth2, req.OriginalSpec} {
		if field != nil && strings.Contains(strings.ToLower(*field), needle) {
			return true
		}
	}
	return false
}

// Apply 필터 적용 후 정렬된 사본을 반환한다. 안정 정렬이라 동순위는 입력 순서 유지.
func Apply(state State, requirements []models.Requirement, resultIndex map[string]*models.TestResult) []models.Requirement {
	var out []models.Requirement
	for _, req := range requirements {
		if Matches(state, &req, resultIndex[req.ID]) {
			out = append(out, req)
		}
	}
	sortRequirements(out, resultIndex, state)
	return out
}

func sortRequirements(requirements []models.Requirement, resultIndex map[string]*models.TestResult, state State) {
	if state.SortField == "" {
		return
	}

	less := func(a, b *models.Requirement) int {
		switch state.SortField {
		case SortByDisplayID:
			return compareInt(displayRank(a), displayRank(b))
		case SortByFeatureName:
			return strings.Compare(deref(a.FeatureName), deref(b.FeatureName))
		case SortByPriority:
			return compareInt(priorityRank(a), priorityRank(b))
		case SortByStatus:
			return compareInt(statusRank(a, resultIndex), statusRank(b, resultIndex))
		}
		return 0
	}

	sort.SliceStable(requirements, func(i, j int) bool {
		cmp := less(&requirements[i], &requirements[j])
		if !state.SortAsc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func displayRank(req *models.Requirement) int {
	if req.DisplayID == nil {
		// display_id 없는 행은 항상 뒤로
		return int(^uint(0) >> 1)
	}
	return *req.DisplayID
}

// priorityRank 명시적 랭크 테이블 기준. 미지정은 최하위.
func priorityRank(req *models.Requirement) int {
	if req.Priority == nil {
		return len(models.PriorityRank)
	}
	if rank, ok := models.PriorityRank[*req.Priority]; ok {
		return rank
	}
	return len(models.PriorityRank)
}

// statusRank 명시적 랭크 테이블 기준. 결과 행 부재는 미테스트 랭크.
func statusRank(req *models.Requirement, resultIndex map[string]*models.TestResult) int {
	status := models.StatusUntested
	if r, ok := resultIndex[req.ID]; ok {
		status = r.Status
	}
	if rank, ok := models.StatusRank[status]; ok {
		return rank
	}
	return len(models.StatusRank)
}
