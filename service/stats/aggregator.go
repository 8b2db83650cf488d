/*
 * @module service/stats/aggregator
 * @description 집계 엔진 - 상태 카운트, 진행률, 시스템/기능영역/이슈/시나리오 통계를 스냅샷 행으로부터 계산하는 순수 함수 모음
 * @architecture 분층 아키텍처 - 업무 서비스층 (순수 계산)
 * @documentReference ai_docs/requirements.md
 * @stateFlow 행 적재 -> 결과 인덱싱 -> O(n) 집계 -> 뷰 모델 반환
 * @rules 결과 행 부재는 미테스트, 알 수 없는 상태는 버리지 않고 Unknown 으로 분리 집계
 * @dependencies qatrack-service/service/models, log/slog
 * @refs service/stats/service.go
 */

package stats

import (
	"log/slog"
	"math"

	"qatrack-service/service/models"
)

// StatusCount 5개 버킷 상태 카운트. Unknown 은 알려지지 않은 상태값의 분리 집계로,
// 데이터 오류 감지용이며 total 에는 포함된다.
type StatusCount struct {
	Pass       int `json:"Pass"`
	Fail       int `json:"Fail"`
	Block      int `json:"Block"`
	InProgress int `json:"In Progress"`
	Untested   int `json:"미테스트"`
	Unknown    int `json:"unknown,omitempty"`
	Total      int `json:"total"`
}

// add 상태값 하나를 버킷에 반영
func (c *StatusCount) add(status string) {
	switch status {
	case models.StatusPass:
		c.Pass++
	case models.StatusFail:
		c.Fail++
	case models.StatusBlock:
		c.Block++
	case models.StatusInProgress:
		c.InProgress++
	case models.StatusUntested:
		c.Untested++
	default:
		// 알 수 없는 상태는 조용히 사라지면 안 된다
		slog.Warn("알 수 없는 테스트 상태값", "status", status)
		c.Unknown++
	}
}

// Done Pass+Fail+Block+In Progress (진행률 분자)
func (c StatusCount) Done() int {
	return c.Pass + c.Fail + c.Block + c.InProgress
}

// IndexResultsByEntity 결과 행을 entity id 기준 맵으로 인덱싱.
// 집계 호출 전 항상 선행해 O(n·m) 반복 탐색을 피한다.
func IndexResultsByEntity(results []models.TestResult) map[string]*models.TestResult {
	index := make(map[string]*models.TestResult, len(results))
	for i := range results {
		index[results[i].RequirementID] = &results[i]
	}
	return index
}

// StatusOf 인덱스에서 요구사항의 현재 상태 조회. 행이 없으면 미테스트.
func StatusOf(index map[string]*models.TestResult, requirementID string) string {
	if r, ok := index[requirementID]; ok {
		return r.Status
	}
	return models.StatusUntested
}

// ComputeStatusCounts 요구사항 집합의 상태 카운트. statusOf 는 entity -> status 매핑.
func ComputeStatusCounts(ids []string, statusOf func(id string) string) StatusCount {
	counts := StatusCount{Total: len(ids)}
	for _, id := range ids {
		counts.add(statusOf(id))
	}
	return counts
}

// ComputeProgressRate 진행률(%). round-half-up, total 0 이면 0.
// 누적 없이 매번 카운트에서 재계산해 결정적이다.
func ComputeProgressRate(counts StatusCount) int {
	if counts.Total == 0 {
		return 0
	}
	return int(math.Floor(float64(counts.Done())/float64(counts.Total)*100 + 0.5))
}

// SystemStats 시스템별 집계 뷰
type SystemStats struct {
	System       models.System `json:"system"`
	Counts       StatusCount   `json:"counts"`
	ProgressRate int           `json:"progress_rate"`
}

// GroupBySystem 시스템별 집계. 요구사항이 없는 시스템도 0 카운트로 포함한다.
func GroupBySystem(requirements []models.Requirement, systems []models.System, index map[string]*models.TestResult) []SystemStats {
	bySystem := make(map[string][]string, len(systems))
	for _, req := range requirements {
		bySystem[req.SystemID] = append(bySystem[req.SystemID], req.ID)
	}

	out := make([]SystemStats, 0, len(systems))
	for _, sys := range systems {
		counts := ComputeStatusCounts(bySystem[sys.ID], func(id string) string {
			return StatusOf(index, id)
		})
		out = append(out, SystemStats{
			System:       sys,
			Counts:       counts,
			ProgressRate: ComputeProgressRate(counts),
		})
	}
	return out
}

// DepthGroupStat (시스템, depth_0) 조합별 집계 뷰
type DepthGroupStat struct {
	SystemID     string      `json:"system_id"`
	SystemName   string      `json:"system_name"`
	Depth0       string      `json:"depth_0"`
	Counts       StatusCount `json:"counts"`
	ProgressRate int         `json:"progress_rate"`
}

// GroupByFeatureArea (system_id, depth_0) 조합 그룹핑.
// depth_0 이 비어 있는 행은 기능영역 분해에서 제외한다(시스템 합계에는 기여).
// 그룹 순서는 최초 등장 순서를 유지한다.
func GroupByFeatureArea(requirements []models.Requirement, systems []models.System, index map[string]*models.TestResult) []DepthGroupStat {
	systemNames := make(map[string]string, len(systems))
	for _, sys := range systems {
		systemNames[sys.ID] = sys.Name
	}

	type group struct {
		systemID string
		depth0   string
		ids      []string
	}
	var order []string
	groups := make(map[string]*group)

	for _, req := range requirements {
		if req.Depth0 == nil || *req.Depth0 == "" {
			continue
		}
		if _, ok := systemNames[req.SystemID]; !ok {
			continue
		}
		key := req.SystemID + "__" + *req.Depth0
		g, ok := groups[key]
		if !ok {
			g = &group{systemID: req.SystemID, depth0: *req.Depth0}
			groups[key] = g
			order = append(order, key)
		}
		g.ids = append(g.ids, req.ID)
	}

	out := make([]DepthGroupStat, 0, len(order))
	for _, key := range order {
		g := groups[key]
		counts := ComputeStatusCounts(g.ids, func(id string) string {
			return StatusOf(index, id)
		})
		out = append(out, DepthGroupStat{
			SystemID:     g.systemID,
			SystemName:   systemNames[g.systemID],
			Depth0:       g.depth0,
			Counts:       counts,
			ProgressRate: ComputeProgressRate(counts),
		})
	}
	return out
}

// IssueStats Fail/Block 결과 기반 이슈 통계.
// item 기반과 result 기반 완료 지표는 별개 의미라 절대 합산하지 않는다.
type IssueStats struct {
	FailCount  int `json:"fail_count"`
	BlockCount int `json:"block_count"`
	// item 기반: 해당 결과들의 issue_items 전체에서 플래그별 항목 수 합계
	ItemRaisedCount int `json:"item_raised_count"`
	ItemFixedCount  int `json:"item_fixed_count"`
	// result 기반: issue_items 가 전혀 없는 레거시 행의 파생 불리언 카운트
	ResultRaisedCount int `json:"result_raised_count"`
	ResultFixedCount  int `json:"result_fixed_count"`
}

// ComputeIssueStats Fail/Block 상태 행만 집계. issue_items 가 있는 행은 item 단위로,
// 없는 행은 레거시 불리언으로 센다(두 경로 모두 지원, 지표는 분리 유지).
func ComputeIssueStats(results []models.TestResult) IssueStats {
	var stats IssueStats
	for _, r := range results {
		switch r.Status {
		case models.StatusFail:
			stats.FailCount++
		case models.StatusBlock:
			stats.BlockCount++
		default:
			continue
		}

		if len(r.IssueItems) > 0 {
			stats.ItemRaisedCount += r.IssueItems.CountRaised()
			stats.ItemFixedCount += r.IssueItems.CountFixed()
			continue
		}
		// 레거시 호환 경로
		if r.IssueRaised {
			stats.ResultRaisedCount++
		}
		if r.IssueFixed {
			stats.ResultFixedCount++
		}
	}
	return stats
}

// TypeStats 시나리오 유형별 집계
type TypeStats struct {
	ScenarioType string      `json:"scenario_type"`
	Counts       StatusCount `json:"counts"`
	ProgressRate int         `json:"progress_rate"`
}

// ScenarioStats 시나리오 전체/유형별 집계
type ScenarioStats struct {
	Total  StatusCount `json:"total"`
	ByType []TypeStats `json:"by_type"`
}

// ComputeScenarioStats active 시나리오만 대상으로 유형별 5버킷 집계.
func ComputeScenarioStats(scenarios []models.TestScenario, results []models.ScenarioResult, cycleID string) ScenarioStats {
	index := make(map[string]string, len(results))
	for _, r := range results {
		if r.CycleID == cycleID {
			index[r.ScenarioID] = r.Status
		}
	}
	statusOf := func(id string) string {
		if s, ok := index[id]; ok {
			return s
		}
		return models.StatusUntested
	}

	var allIDs []string
	byType := map[string][]string{}
	for _, sc := range scenarios {
		if sc.Status != models.ScenarioStatusActive {
			continue
		}
		allIDs = append(allIDs, sc.ID)
		byType[sc.ScenarioType] = append(byType[sc.ScenarioType], sc.ID)
	}

	stats := ScenarioStats{Total: ComputeStatusCounts(allIDs, statusOf)}
	for _, t := range []string{models.ScenarioTypeUnit, models.ScenarioTypeIntegration, models.ScenarioTypeE2E} {
		counts := ComputeStatusCounts(byType[t], statusOf)
		stats.ByType = append(stats.ByType, TypeStats{
			ScenarioType: t,
			Counts:       counts,
			ProgressRate: ComputeProgressRate(counts),
		})
	}
	return stats
}
