/*
 * @module service/models/test_utils
 * @description 모델 테스트 보조 도구 - in-memory sqlite 와 테스트 데이터 팩토리
 * @architecture 테스트 기반 시설 - 모델층 전용, 순환 임포트 방지
 * @documentReference ai_docs/test_plan.md
 * @stateFlow 테스트 DB 초기화 -> 데이터 생성 -> 테스트 수행 -> 정리
 * @rules 서비스 패키지 테스트도 이 팩토리를 재사용한다
 * @dependencies gorm, sqlite, time
 */

package models

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ModelTestDB 모델 테스트용 DB 구성
type ModelTestDB struct {
	DB *gorm.DB
}

// NewModelTestDB in-memory sqlite 테스트 DB 생성 및 전체 모델 마이그레이션
func NewModelTestDB() *ModelTestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	err = db.AutoMigrate(
		&System{},
		&TestCycle{},
		&Requirement{},
		&TestResult{},
		&RequirementChange{},
		&TestScenario{},
		&ScenarioRequirement{},
		&ScenarioComposition{},
		&ScenarioResult{},
		&ProgressSnapshot{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &ModelTestDB{DB: db}
}

// CleanDB 모든 테이블 데이터 삭제
func (tdb *ModelTestDB) CleanDB() {
	tables := []string{
		"scenario_results",
		"scenario_compositions",
		"scenario_requirements",
		"test_scenarios",
		"progress_snapshots",
		"requirement_changes",
		"test_results",
		"requirements",
		"test_cycles",
		"systems",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close DB 연결 종료
func (tdb *ModelTestDB) Close() {
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		fmt.Printf("Error getting underlying DB: %v\n", err)
		return
	}
	sqlDB.Close()
}

// ModelTestDataFactory 테스트 데이터 팩토리
type ModelTestDataFactory struct {
	DB *gorm.DB

	nextDisplayID int
}

// NewModelTestDataFactory 테스트 데이터 팩토리 생성
func NewModelTestDataFactory(db *gorm.DB) *ModelTestDataFactory {
	return &ModelTestDataFactory{DB: db}
}

// CreateSystem 테스트 시스템 생성
func (f *ModelTestDataFactory) CreateSystem(name string) *System {
	system := &System{
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := f.DB.Create(system).Error; err != nil {
		panic(fmt.Sprintf("failed to create test system: %v", err))
	}
	return system
}

// CreateCycle 테스트 사이클 생성
func (f *ModelTestDataFactory) CreateCycle(name string) *TestCycle {
	now := time.Now()
	cycle := &TestCycle{
		Name:      name,
		StartedAt: &now,
		CreatedAt: now,
	}

	if err := f.DB.Create(cycle).Error; err != nil {
		panic(fmt.Sprintf("failed to create test cycle: %v", err))
	}
	return cycle
}

// CreateRequirement 테스트 요구사항 생성 (display_id 는 팩토리에서 순차 부여)
func (f *ModelTestDataFactory) CreateRequirement(systemID string, mutate ...func(*Requirement)) *Requirement {
	f.nextDisplayID++
	displayID := f.nextDisplayID
	featureName := fmt.Sprintf("테스트 기능 %d", displayID)
	spec := "테스트용 상세 요구사항"

	req := &Requirement{
		SystemID:     systemID,
		FeatureName:  &featureName,
		OriginalSpec: &spec,
		DisplayID:    &displayID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	for _, m := range mutate {
		m(req)
	}

	if err := f.DB.Create(req).Error; err != nil {
		panic(fmt.Sprintf("failed to create test requirement: %v", err))
	}
	return req
}

// CreateResult 테스트 결과 생성
func (f *ModelTestDataFactory) CreateResult(requirementID, cycleID, status string, mutate ...func(*TestResult)) *TestResult {
	now := time.Now()
	result := &TestResult{
		RequirementID: requirementID,
		CycleID:       cycleID,
		Status:        status,
		TestedAt:      &now,
		CreatedAt:     now,
	}
	for _, m := range mutate {
		m(result)
	}

	if err := f.DB.Create(result).Error; err != nil {
		panic(fmt.Sprintf("failed to create test result: %v", err))
	}
	return result
}

// CreateScenario 테스트 시나리오 생성
func (f *ModelTestDataFactory) CreateScenario(title, scenarioType string, mutate ...func(*TestScenario)) *TestScenario {
	scenario := &TestScenario{
		Title:          title,
		ScenarioType:   scenarioType,
		Status:         ScenarioStatusActive,
		Steps:          "1. 동작 수행 후 기대 반응 확인",
		ExpectedResult: "정상 동작",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	for _, m := range mutate {
		m(scenario)
	}

	if err := f.DB.Create(scenario).Error; err != nil {
		panic(fmt.Sprintf("failed to create test scenario: %v", err))
	}
	return scenario
}

// CreateComposition 구성 엣지 생성 (검증 없이 직접 삽입)
func (f *ModelTestDataFactory) CreateComposition(parentID, childID string, orderIndex int) *ScenarioComposition {
	comp := &ScenarioComposition{
		ParentID:   parentID,
		ChildID:    childID,
		OrderIndex: orderIndex,
	}

	if err := f.DB.Create(comp).Error; err != nil {
		panic(fmt.Sprintf("failed to create test composition: %v", err))
	}
	return comp
}
