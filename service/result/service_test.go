/*
 * @module service/result/service_test
 * @description 테스트 결과 업서트 상태 기계 단위 테스트
 * @architecture 테스트층 - 단위 테스트 (in-memory sqlite)
 */

package result

import (
	"context"
	"testing"

	"qatrack-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *models.ModelTestDataFactory, func()) {
	tdb := models.NewModelTestDB()
	factory := models.NewModelTestDataFactory(tdb.DB)
	return NewService(tdb.DB), factory, tdb.Close
}

func strPtr(s string) *string { return &s }

func TestRecord_UpsertKeepsSingleRow(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	cycle := factory.CreateCycle("1차 QA")
	req := factory.CreateRequirement(system.ID)

	ctx := context.Background()
	first, err := svc.Record(ctx, RecordInput{
		RequirementID: req.ID,
		CycleID:       cycle.ID,
		Status:        models.StatusFail,
		Tester:        strPtr("김QA"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFail, first.Status)

	// 같은 (요구사항, 사이클) 재기록은 행을 갱신한다
	_, err = svc.Record(ctx, RecordInput{
		RequirementID: req.ID,
		CycleID:       cycle.ID,
		Status:        models.StatusPass,
	})
	require.NoError(t, err)

	var count int64
	svc.db.Model(&models.TestResult{}).
		Where("requirement_id = ? AND cycle_id = ?", req.ID, cycle.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)

	stored, err := svc.GetByPair(ctx, req.ID, cycle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPass, stored.Status)
	assert.NotNil(t, stored.TestedAt)
}

func TestRecord_UpdatePathKeepsStoredID(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	cycle := factory.CreateCycle("1차 QA")
	req := factory.CreateRequirement(system.ID)

	ctx := context.Background()
	first, err := svc.Record(ctx, RecordInput{RequirementID: req.ID, CycleID: cycle.ID, Status: models.StatusFail})
	require.NoError(t, err)

	second, err := svc.Record(ctx, RecordInput{RequirementID: req.ID, CycleID: cycle.ID, Status: models.StatusPass})
	require.NoError(t, err)

	// 재기록 반환값은 저장된 행과 같은 id 를 유지한다
	assert.Equal(t, first.ID, second.ID)

	stored, err := svc.GetByPair(ctx, req.ID, cycle.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, second.ID)
	assert.Equal(t, stored.CreatedAt.Unix(), second.CreatedAt.Unix())
}

func TestRecord_SeparateCyclesSeparateRows(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	c1 := factory.CreateCycle("1차 QA")
	c2 := factory.CreateCycle("2차 QA")
	req := factory.CreateRequirement(system.ID)

	ctx := context.Background()
	_, err := svc.Record(ctx, RecordInput{RequirementID: req.ID, CycleID: c1.ID, Status: models.StatusFail})
	require.NoError(t, err)
	_, err = svc.Record(ctx, RecordInput{RequirementID: req.ID, CycleID: c2.ID, Status: models.StatusPass})
	require.NoError(t, err)

	r1, _ := svc.GetByPair(ctx, req.ID, c1.ID)
	r2, _ := svc.GetByPair(ctx, req.ID, c2.ID)
	assert.Equal(t, models.StatusFail, r1.Status)
	assert.Equal(t, models.StatusPass, r2.Status)
}

func TestRecord_RejectsInvalidStatus(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	cycle := factory.CreateCycle("1차 QA")
	req := factory.CreateRequirement(system.ID)

	_, err := svc.Record(context.Background(), RecordInput{
		RequirementID: req.ID,
		CycleID:       cycle.ID,
		Status:        "통과됨",
	})
	assert.Error(t, err)
}

func TestRecord_StatusTransitionAppendsChangeLog(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	cycle := factory.CreateCycle("1차 QA")
	req := factory.CreateRequirement(system.ID)

	ctx := context.Background()
	_, err := svc.Record(ctx, RecordInput{RequirementID: req.ID, CycleID: cycle.ID, Status: models.StatusFail})
	require.NoError(t, err)

	var changes []models.RequirementChange
	svc.db.Where("requirement_id = ?", req.ID).Find(&changes)
	require.Len(t, changes, 1)
	assert.Equal(t, "status", changes[0].ChangedField)
	assert.Equal(t, models.StatusUntested, *changes[0].OldValue)
	assert.Equal(t, models.StatusFail, *changes[0].NewValue)

	// 동일 상태 재기록은 전이가 아니므로 이력을 늘리지 않는다
	_, err = svc.Record(ctx, RecordInput{RequirementID: req.ID, CycleID: cycle.ID, Status: models.StatusFail})
	require.NoError(t, err)

	svc.db.Where("requirement_id = ?", req.ID).Find(&changes)
	assert.Len(t, changes, 1)
}

func TestRecord_IssueFlagsDerivedFromItems(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	cycle := factory.CreateCycle("1차 QA")
	req := factory.CreateRequirement(system.ID)

	ctx := context.Background()

	// 빈 목록이면 파생 플래그는 false
	recorded, err := svc.Record(ctx, RecordInput{
		RequirementID: req.ID, CycleID: cycle.ID, Status: models.StatusFail,
	})
	require.NoError(t, err)
	assert.False(t, recorded.IssueRaised)
	assert.False(t, recorded.IssueFixed)

	// 전 항목 raised, 일부만 fixed
	recorded, err = svc.Record(ctx, RecordInput{
		RequirementID: req.ID, CycleID: cycle.ID, Status: models.StatusFail,
		IssueItems: models.IssueItemList{
			{Text: "버튼 미동작", Raised: true, Fixed: true},
			{Text: "금액 오표기", Raised: true, Fixed: false},
		},
	})
	require.NoError(t, err)
	assert.True(t, recorded.IssueRaised)
	assert.False(t, recorded.IssueFixed)
}

func TestUpdateIssueItems_RecomputesFlagsWithoutStatusChange(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	cycle := factory.CreateCycle("1차 QA")
	req := factory.CreateRequirement(system.ID)

	ctx := context.Background()
	_, err := svc.Record(ctx, RecordInput{RequirementID: req.ID, CycleID: cycle.ID, Status: models.StatusFail})
	require.NoError(t, err)

	updated, err := svc.UpdateIssueItems(ctx, req.ID, cycle.ID, models.IssueItemList{
		{Text: "a", Raised: true, Fixed: true},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFail, updated.Status)
	assert.True(t, updated.IssueRaised)
	assert.True(t, updated.IssueFixed)
}

func TestSetRetestReason_IndependentOfStatus(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	cycle := factory.CreateCycle("1차 QA")
	req := factory.CreateRequirement(system.ID)

	ctx := context.Background()

	// 결과 행이 없어도 미테스트 행을 만들어 사유를 단다
	reason := models.RetestReasonPolicy
	row, err := svc.SetRetestReason(ctx, req.ID, cycle.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUntested, row.Status)
	assert.Equal(t, models.RetestReasonPolicy, *row.RetestReason)

	// 해제 (nil)
	row, err = svc.SetRetestReason(ctx, req.ID, cycle.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, row.RetestReason)

	// 알 수 없는 사유는 거부
	bad := "그냥"
	_, err = svc.SetRetestReason(ctx, req.ID, cycle.ID, &bad)
	assert.Error(t, err)
}

func TestRecordScenario_Upsert(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	cycle := factory.CreateCycle("1차 QA")
	scenario := factory.CreateScenario("주문 통합 검증", models.ScenarioTypeIntegration)

	ctx := context.Background()
	first, err := svc.RecordScenario(ctx, ScenarioRecordInput{
		ScenarioID: scenario.ID, CycleID: cycle.ID, Status: models.StatusInProgress,
	})
	require.NoError(t, err)
	second, err := svc.RecordScenario(ctx, ScenarioRecordInput{
		ScenarioID: scenario.ID, CycleID: cycle.ID, Status: models.StatusPass,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	results, err := svc.ListScenarioResults(ctx, cycle.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusPass, results[0].Status)
	assert.Equal(t, first.ID, results[0].ID)
}
