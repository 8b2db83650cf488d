/*
 * @module service/stats/aggregator_test
 * @description 집계 엔진 단위 테스트
 * @architecture 테스트층 - 단위 테스트
 */

package stats

import (
	"testing"

	"qatrack-service/service/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestComputeStatusCounts(t *testing.T) {
	statuses := map[string]string{
		"a": models.StatusPass,
		"b": models.StatusPass,
		"c": models.StatusFail,
		"d": models.StatusBlock,
		"e": models.StatusInProgress,
	}
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}

	counts := ComputeStatusCounts(ids, func(id string) string {
		if s, ok := statuses[id]; ok {
			return s
		}
		return models.StatusUntested
	})

	assert.Equal(t, 2, counts.Pass)
	assert.Equal(t, 1, counts.Fail)
	assert.Equal(t, 1, counts.Block)
	assert.Equal(t, 1, counts.InProgress)
	assert.Equal(t, 2, counts.Untested)
	assert.Equal(t, 7, counts.Total)
	assert.Equal(t, 5, counts.Done())
}

func TestComputeStatusCounts_UnknownStatus(t *testing.T) {
	counts := ComputeStatusCounts([]string{"a", "b"}, func(id string) string {
		if id == "a" {
			return "깨진상태값"
		}
		return models.StatusPass
	})

	// 알 수 없는 상태는 분리 집계되고 total 에는 남는다
	assert.Equal(t, 1, counts.Unknown)
	assert.Equal(t, 1, counts.Pass)
	assert.Equal(t, 2, counts.Total)
}

func TestComputeProgressRate(t *testing.T) {
	// 10건 중 4건 완료 = 40%
	counts := StatusCount{Pass: 2, Fail: 1, Block: 1, Untested: 6, Total: 10}
	assert.Equal(t, 40, ComputeProgressRate(counts))

	// round-half-up: 1/3 = 33.33 -> 33, 2/3 = 66.67 -> 67, 1/2 = 50
	assert.Equal(t, 33, ComputeProgressRate(StatusCount{Pass: 1, Untested: 2, Total: 3}))
	assert.Equal(t, 67, ComputeProgressRate(StatusCount{Pass: 2, Untested: 1, Total: 3}))
	assert.Equal(t, 13, ComputeProgressRate(StatusCount{Pass: 1, Untested: 7, Total: 8}))

	// 빈 집합은 0
	assert.Equal(t, 0, ComputeProgressRate(StatusCount{}))
}

func TestStatusOf_MissingRowIsUntested(t *testing.T) {
	index := IndexResultsByEntity([]models.TestResult{
		{RequirementID: "r1", Status: models.StatusPass},
	})

	assert.Equal(t, models.StatusPass, StatusOf(index, "r1"))
	assert.Equal(t, models.StatusUntested, StatusOf(index, "없는행"))
}

func TestGroupBySystem_IncludesEmptySystems(t *testing.T) {
	systems := []models.System{
		{ID: "s1", Name: "쇼핑몰"},
		{ID: "s2", Name: "공급사"},
	}
	requirements := []models.Requirement{
		{ID: "r1", SystemID: "s1"},
		{ID: "r2", SystemID: "s1"},
	}
	index := IndexResultsByEntity([]models.TestResult{
		{RequirementID: "r1", Status: models.StatusPass},
	})

	out := GroupBySystem(requirements, systems, index)

	assert.Len(t, out, 2)
	assert.Equal(t, "쇼핑몰", out[0].System.Name)
	assert.Equal(t, 2, out[0].Counts.Total)
	assert.Equal(t, 50, out[0].ProgressRate)
	// 요구사항 없는 시스템도 0 카운트로 포함
	assert.Equal(t, 0, out[1].Counts.Total)
	assert.Equal(t, 0, out[1].ProgressRate)
}

func TestGroupByFeatureArea(t *testing.T) {
	systems := []models.System{{ID: "s1", Name: "쇼핑몰"}}
	requirements := []models.Requirement{
		{ID: "r1", SystemID: "s1", Depth0: strPtr("주문")},
		{ID: "r2", SystemID: "s1", Depth0: strPtr("결제")},
		{ID: "r3", SystemID: "s1", Depth0: strPtr("주문")},
		{ID: "r4", SystemID: "s1"}, // depth_0 없음, 분해 제외
		{ID: "r5", SystemID: "s1", Depth0: strPtr("")},
	}
	index := IndexResultsByEntity([]models.TestResult{
		{RequirementID: "r1", Status: models.StatusPass},
		{RequirementID: "r3", Status: models.StatusFail},
	})

	out := GroupByFeatureArea(requirements, systems, index)

	assert.Len(t, out, 2)
	// 최초 등장 순서 유지
	assert.Equal(t, "주문", out[0].Depth0)
	assert.Equal(t, "결제", out[1].Depth0)
	assert.Equal(t, 2, out[0].Counts.Total)
	assert.Equal(t, 1, out[0].Counts.Pass)
	assert.Equal(t, 1, out[0].Counts.Fail)
	assert.Equal(t, 100, out[0].ProgressRate)
	assert.Equal(t, 0, out[1].ProgressRate)
}

func TestComputeIssueStats_ItemAndLegacyPathsSeparate(t *testing.T) {
	results := []models.TestResult{
		// item 기반 행
		{Status: models.StatusFail, IssueItems: models.IssueItemList{
			{Text: "a", Raised: true, Fixed: true},
			{Text: "b", Raised: true, Fixed: false},
		}},
		// 레거시 불리언 행
		{Status: models.StatusBlock, IssueRaised: true, IssueFixed: false},
		// Pass 행은 집계 대상 아님
		{Status: models.StatusPass, IssueRaised: true},
	}

	stats := ComputeIssueStats(results)

	assert.Equal(t, 1, stats.FailCount)
	assert.Equal(t, 1, stats.BlockCount)
	assert.Equal(t, 2, stats.ItemRaisedCount)
	assert.Equal(t, 1, stats.ItemFixedCount)
	assert.Equal(t, 1, stats.ResultRaisedCount)
	assert.Equal(t, 0, stats.ResultFixedCount)
}

func TestComputeScenarioStats_ActiveOnly(t *testing.T) {
	scenarios := []models.TestScenario{
		{ID: "sc1", ScenarioType: models.ScenarioTypeUnit, Status: models.ScenarioStatusActive},
		{ID: "sc2", ScenarioType: models.ScenarioTypeE2E, Status: models.ScenarioStatusActive},
		{ID: "sc3", ScenarioType: models.ScenarioTypeUnit, Status: models.ScenarioStatusDraft},
	}
	results := []models.ScenarioResult{
		{ScenarioID: "sc1", CycleID: "c1", Status: models.StatusPass},
		{ScenarioID: "sc3", CycleID: "c1", Status: models.StatusPass}, // draft, 무시
		{ScenarioID: "sc2", CycleID: "다른사이클", Status: models.StatusPass},
	}

	stats := ComputeScenarioStats(scenarios, results, "c1")

	assert.Equal(t, 2, stats.Total.Total)
	assert.Equal(t, 1, stats.Total.Pass)
	assert.Equal(t, 1, stats.Total.Untested)

	assert.Len(t, stats.ByType, 3)
	assert.Equal(t, models.ScenarioTypeUnit, stats.ByType[0].ScenarioType)
	assert.Equal(t, 1, stats.ByType[0].Counts.Total)
	assert.Equal(t, 100, stats.ByType[0].ProgressRate)
}
