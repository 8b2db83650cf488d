/*
 * @module service/requirement/service_test
 * @description 요구사항 서비스 단위 테스트 - display_id 시퀀스, 변경 이력, 검색
 * @architecture 테스트층 - 단위 테스트 (in-memory sqlite)
 */

package requirement

import (
	"context"
	"testing"

	"qatrack-service/service/models"
	"qatrack-service/service/qafilter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *models.ModelTestDataFactory, func()) {
	tdb := models.NewModelTestDB()
	factory := models.NewModelTestDataFactory(tdb.DB)
	return NewService(tdb.DB), factory, tdb.Close
}

func strPtr(s string) *string { return &s }

func TestCreate_AssignsSequentialDisplayID(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{SystemID: system.ID, FeatureName: strPtr("주문 생성")})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateInput{SystemID: system.ID, FeatureName: strPtr("주문 취소")})
	require.NoError(t, err)

	assert.Equal(t, 1, *first.DisplayID)
	assert.Equal(t, 2, *second.DisplayID)
}

func TestCreate_RequiresSystem(t *testing.T) {
	svc, _, teardown := setup(t)
	defer teardown()

	_, err := svc.Create(context.Background(), CreateInput{FeatureName: strPtr("이름만")})
	assert.ErrorIs(t, err, ErrSystemRequired)
}

func TestBulkCreate_ContinuesSequence(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{SystemID: system.ID})
	require.NoError(t, err)

	created, err := svc.BulkCreate(ctx, []CreateInput{
		{SystemID: system.ID, FeatureName: strPtr("a")},
		{SystemID: system.ID, FeatureName: strPtr("b")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var last models.Requirement
	require.NoError(t, svc.db.Order("display_id DESC").First(&last).Error)
	assert.Equal(t, 3, *last.DisplayID)
}

func TestUpdate_AppendsChangeLogForTrackedFields(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	req := factory.CreateRequirement(system.ID, func(r *models.Requirement) {
		r.CurrentPolicy = strPtr("구 정책")
	})

	ctx := context.Background()
	err := svc.Update(ctx, req.ID, map[string]interface{}{
		"current_policy": "신 정책",
		"feature_name":   "변경된 기능명",
	}, "정책 개편")
	require.NoError(t, err)

	changes, err := svc.GetChangeHistory(ctx, req.ID, 10)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	byField := map[string]models.RequirementChange{}
	for _, c := range changes {
		byField[c.ChangedField] = c
	}
	assert.Equal(t, "구 정책", *byField["current_policy"].OldValue)
	assert.Equal(t, "신 정책", *byField["current_policy"].NewValue)
	assert.Equal(t, "정책 개편", *byField["current_policy"].ChangeReason)

	// policy_updated_at 이 함께 갱신된다
	var updated models.Requirement
	require.NoError(t, svc.db.First(&updated, "id = ?", req.ID).Error)
	assert.NotNil(t, updated.PolicyUpdatedAt)
}

func TestUpdate_UnchangedValueSkipsLog(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	req := factory.CreateRequirement(system.ID, func(r *models.Requirement) {
		r.Priority = strPtr(models.PriorityHigh)
	})

	ctx := context.Background()
	err := svc.Update(ctx, req.ID, map[string]interface{}{"priority": models.PriorityHigh}, "")
	require.NoError(t, err)

	changes, err := svc.GetChangeHistory(ctx, req.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestListWithResults_AttachesCycleResult(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	cycle := factory.CreateCycle("1차 QA")
	other := factory.CreateCycle("2차 QA")
	req := factory.CreateRequirement(system.ID)
	factory.CreateResult(req.ID, cycle.ID, models.StatusFail)
	factory.CreateResult(req.ID, other.ID, models.StatusPass)

	rows, err := svc.ListWithResults(context.Background(), cycle.ID, qafilter.State{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].CurrentResult)
	assert.Equal(t, models.StatusFail, rows[0].CurrentResult.Status)
}

func TestBulkDelete(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	r1 := factory.CreateRequirement(system.ID)
	r2 := factory.CreateRequirement(system.ID)
	r3 := factory.CreateRequirement(system.ID)

	err := svc.BulkDelete(context.Background(), []string{r1.ID, r3.ID})
	require.NoError(t, err)

	var remaining []models.Requirement
	svc.db.Find(&remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, r2.ID, remaining[0].ID)
}

func TestSearchRelated_NumericMatchesDisplayID(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	target := factory.CreateRequirement(system.ID, func(r *models.Requirement) {
		r.FeatureName = strPtr("주문 취소")
	})
	factory.CreateRequirement(system.ID, func(r *models.Requirement) {
		r.FeatureName = strPtr("결제 승인")
	})

	ctx := context.Background()

	byText, err := svc.SearchRelated(ctx, "취소", "", 0)
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, target.ID, byText[0].ID)

	byNumber, err := svc.SearchRelated(ctx, "1", "", 0)
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, *target.DisplayID, *byNumber[0].DisplayID)

	// 자기 자신 제외
	excluded, err := svc.SearchRelated(ctx, "취소", target.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, excluded)
}

func TestGetNamesByDisplayIDs(t *testing.T) {
	svc, factory, teardown := setup(t)
	defer teardown()

	system := factory.CreateSystem("쇼핑몰")
	req := factory.CreateRequirement(system.ID, func(r *models.Requirement) {
		r.FeatureName = strPtr("주문 생성")
	})

	names, err := svc.GetNamesByDisplayIDs(context.Background(), []int{*req.DisplayID, 999})
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "주문 생성", names[*req.DisplayID].Name)
	assert.Equal(t, "쇼핑몰", names[*req.DisplayID].SystemName)
}
