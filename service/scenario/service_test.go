/*
 * @module service/scenario/service_test
 * @description 시나리오 구성 해석/갱신 단위 테스트
 * @architecture 테스트층 - 단위 테스트 (in-memory sqlite)
 */

package scenario

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

func TestCreate_Validation(t *testing.T) {
	svc, _, teardown := setup(t)
	defer teardown()

	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{ScenarioType: models.ScenarioTypeUnit})
	assert.Error(t, err, "제목 없는 생성은 거부")

	_, err = svc.Create(ctx, CreateInput{Title: "t", ScenarioType: "smoke"})
	assert.Error(t, err, "알 수 없는 유형은 거부")

	created, err := svc.Create(ctx, CreateInput{Title: "주문 단위 검증", ScenarioType: models.ScenarioTypeUnit})
	require.NoError(t, err)
	assert.Equal(t, models.ScenarioStatusActive, created.Status)
}

func TestSetRequirements_ReplaceAllRenumbers(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	r1 := factory.CreateRequirement(system.ID)
	r2 := factory.CreateRequirement(system.ID)
	r3 := factory.CreateRequirement(system.ID)
	scenario := factory.CreateScenario("주문 흐름", models.ScenarioTypeIntegration)

	ctx := context.Background()
	require.NoError(t, svc.SetRequirements(ctx, scenario.ID, []RequirementLink{
		{RequirementID: r1.ID},
		{RequirementID: r2.ID},
	}))

	// 전체 교체: r2 먼저, r3 추가
	require.NoError(t, svc.SetRequirements(ctx, scenario.ID, []RequirementLink{
		{RequirementID: r2.ID},
		{RequirementID: r3.ID},
	}))

	loaded, err := svc.GetByID(ctx, scenario.ID)
	require.NoError(t, err)
	require.Len(t, loaded.ScenarioRequirements, 2)
	assert.Equal(t, r2.ID, loaded.ScenarioRequirements[0].RequirementID)
	assert.Equal(t, 0, loaded.ScenarioRequirements[0].OrderIndex)
	assert.Equal(t, r3.ID, loaded.ScenarioRequirements[1].RequirementID)
	assert.Equal(t, 1, loaded.ScenarioRequirements[1].OrderIndex)
}

func TestSetChildren_StructuralValidation(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	e2e := factory.CreateScenario("전체 구매 여정", models.ScenarioTypeE2E)
	integration := factory.CreateScenario("주문 통합", models.ScenarioTypeIntegration)
	unit := factory.CreateScenario("버튼 단위", models.ScenarioTypeUnit)

	ctx := context.Background()

	// 부모가 e2e 가 아니면 거부
	err := svc.SetChildren(ctx, integration.ID, []string{unit.ID})
	assert.ErrorIs(t, err, ErrParentNotE2E)

	// 자식에 integration 아닌 시나리오가 섞이면 거부
	err = svc.SetChildren(ctx, e2e.ID, []string{integration.ID, unit.ID})
	assert.ErrorIs(t, err, ErrChildNotIntegration)

	// 존재하지 않는 자식 거부
	err = svc.SetChildren(ctx, e2e.ID, []string{integration.ID, "없는아이디"})
	assert.ErrorIs(t, err, ErrCompositionNotExists)
}

func TestSetChildren_FailedValidationLeavesEdgesUntouched(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	e2e := factory.CreateScenario("전체 구매 여정", models.ScenarioTypeE2E)
	i1 := factory.CreateScenario("주문 통합", models.ScenarioTypeIntegration)
	unit := factory.CreateScenario("버튼 단위", models.ScenarioTypeUnit)

	ctx := context.Background()
	require.NoError(t, svc.SetChildren(ctx, e2e.ID, []string{i1.ID}))

	// 검증 실패: 기존 엣지가 그대로 남는다
	err := svc.SetChildren(ctx, e2e.ID, []string{unit.ID})
	require.Error(t, err)

	children, err := svc.GetChildren(ctx, e2e.ID, "")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, i1.ID, children[0].ID)
}

func TestGetChildren_PreservesOrderIndex(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	e2e := factory.CreateScenario("전체 구매 여정", models.ScenarioTypeE2E)
	i1 := factory.CreateScenario("로그인 통합", models.ScenarioTypeIntegration)
	i2 := factory.CreateScenario("주문 통합", models.ScenarioTypeIntegration)
	i3 := factory.CreateScenario("결제 통합", models.ScenarioTypeIntegration)

	ctx := context.Background()
	require.NoError(t, svc.SetChildren(ctx, e2e.ID, []string{i3.ID, i1.ID, i2.ID}))

	children, err := svc.GetChildren(ctx, e2e.ID, "")
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, i3.ID, children[0].ID)
	assert.Equal(t, i1.ID, children[1].ID)
	assert.Equal(t, i2.ID, children[2].ID)
}

func TestGetChildren_AttachesCycleResults(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	cycle := factory.CreateCycle("1차 사이클")
	e2e := factory.CreateScenario("전체 구매 여정", models.ScenarioTypeE2E)
	i1 := factory.CreateScenario("로그인 통합", models.ScenarioTypeIntegration)
	i2 := factory.CreateScenario("주문 통합", models.ScenarioTypeIntegration)

	ctx := context.Background()
	require.NoError(t, svc.SetChildren(ctx, e2e.ID, []string{i1.ID, i2.ID}))
	require.NoError(t, svc.db.Create(&models.ScenarioResult{
		ScenarioID: i1.ID,
		CycleID:    cycle.ID,
		Status:     models.StatusPass,
	}).Error)

	children, err := svc.GetChildren(ctx, e2e.ID, cycle.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	require.NotNil(t, children[0].Result)
	assert.Equal(t, models.StatusPass, children[0].Result.Status)
	assert.Nil(t, children[1].Result, "결과 없는 자식은 미기록으로 남는다")
}

func TestGetParents_ExposesPerParentOrderIndex(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	p1 := factory.CreateScenario("구매 여정 A", models.ScenarioTypeE2E)
	p2 := factory.CreateScenario("구매 여정 B", models.ScenarioTypeE2E)
	first := factory.CreateScenario("선행 통합", models.ScenarioTypeIntegration)
	child := factory.CreateScenario("공유 통합", models.ScenarioTypeIntegration)

	ctx := context.Background()
	require.NoError(t, svc.SetChildren(ctx, p1.ID, []string{first.ID, child.ID}))
	require.NoError(t, svc.SetChildren(ctx, p2.ID, []string{child.ID}))

	parents, err := svc.GetParents(ctx, child.ID)
	require.NoError(t, err)
	require.Len(t, parents, 2)

	// 같은 자식이라도 부모별 order_index 가 그대로 드러나고, 목록은 order_index 오름차순
	assert.Equal(t, p2.ID, parents[0].ID)
	assert.Equal(t, 0, parents[0].OrderIndex)
	assert.Equal(t, p1.ID, parents[1].ID)
	assert.Equal(t, 1, parents[1].OrderIndex)
}

func TestSetParents_MultiParentIndependentOrder(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	p1 := factory.CreateScenario("구매 여정 A", models.ScenarioTypeE2E)
	p2 := factory.CreateScenario("구매 여정 B", models.ScenarioTypeE2E)
	existing := factory.CreateScenario("기존 통합", models.ScenarioTypeIntegration)
	child := factory.CreateScenario("공유 통합", models.ScenarioTypeIntegration)

	ctx := context.Background()
	// p1 에는 이미 자식이 하나 있다
	require.NoError(t, svc.SetChildren(ctx, p1.ID, []string{existing.ID}))

	// child 를 두 부모에 동시에 붙인다
	require.NoError(t, svc.SetParents(ctx, child.ID, []string{p1.ID, p2.ID}))

	var edges []models.ScenarioComposition
	svc.db.Where("child_id = ?", child.ID).Find(&edges)
	require.Len(t, edges, 2)

	byParent := map[string]int{}
	for _, e := range edges {
		byParent[e.ParentID] = e.OrderIndex
	}
	// 같은 자식이라도 부모별 order_index 는 독립이다
	assert.Equal(t, 1, byParent[p1.ID])
	assert.Equal(t, 0, byParent[p2.ID])

	// 부모 목록 축소는 빠진 엣지만 지운다
	require.NoError(t, svc.SetParents(ctx, child.ID, []string{p2.ID}))
	parents, err := svc.GetParents(ctx, child.ID)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, p2.ID, parents[0].ID)
}

func TestSetParents_RejectsNonIntegrationChild(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	e2e := factory.CreateScenario("여정", models.ScenarioTypeE2E)
	unit := factory.CreateScenario("단위", models.ScenarioTypeUnit)

	err := svc.SetParents(context.Background(), unit.ID, []string{e2e.ID})
	assert.ErrorIs(t, err, ErrChildNotIntegration)
}

func TestDelete_CleansJoinRows(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	req := factory.CreateRequirement(system.ID)
	e2e := factory.CreateScenario("여정", models.ScenarioTypeE2E)
	child := factory.CreateScenario("통합", models.ScenarioTypeIntegration)

	ctx := context.Background()
	require.NoError(t, svc.SetRequirements(ctx, child.ID, []RequirementLink{{RequirementID: req.ID}}))
	require.NoError(t, svc.SetChildren(ctx, e2e.ID, []string{child.ID}))

	require.NoError(t, svc.Delete(ctx, child.ID))

	var linkCount, edgeCount int64
	svc.db.Model(&models.ScenarioRequirement{}).Where("scenario_id = ?", child.ID).Count(&linkCount)
	svc.db.Model(&models.ScenarioComposition{}).Where("child_id = ?", child.ID).Count(&edgeCount)
	assert.Equal(t, int64(0), linkCount)
	assert.Equal(t, int64(0), edgeCount)
}
