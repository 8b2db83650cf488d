/*
 * @module service/database/migrate
 * @description 데이터베이스 마이그레이션 - 테이블 구조 생성과 기본 시스템 시드
 * @architecture 데이터 접근층 - 마이그레이션 관리
 * @documentReference ai_docs/model.md
 * @stateFlow 앱 기동 시 AutoMigrate -> 시드 데이터 보강
 * @rules 시드는 없는 시스템만 추가한다 (재기동 시 중복 생성 금지)
 * @dependencies qatrack-service/service/models, gorm.io/gorm
 * @refs service/models/qa.go, service/models/scenario.go
 */

package database

import (
	"log"

	"qatrack-service/service/models"

	"gorm.io/gorm"
)

// 테스트 대상 시스템은 고정 3종이다
var seedSystems = []string{"쇼핑몰", "공급사", "관리자"}

// AutoMigrate 테이블 구조 자동 마이그레이션
func AutoMigrate(db *gorm.DB) error {
	log.Println("데이터베이스 마이그레이션 시작...")

	// 핵심 추적 테이블
	err := db.AutoMigrate(
		&models.System{},
		&models.TestCycle{},
		&models.Requirement{},
		&models.TestResult{},
		&models.RequirementChange{},
	)
	if err != nil {
		return err
	}

	// 시나리오 관련 테이블
	err = db.AutoMigrate(
		&models.TestScenario{},
		&models.ScenarioRequirement{},
		&models.ScenarioComposition{},
		&models.ScenarioResult{},
	)
	if err != nil {
		return err
	}

	// 스냅샷 테이블
	return db.AutoMigrate(&models.ProgressSnapshot{})
}

// InitializeData 기본 데이터 시드
func InitializeData(db *gorm.DB) error {
	for _, name := range seedSystems {
		var count int64
		if err := db.Model(&models.System{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.System{Name: name}).Error; err != nil {
			return err
		}
		log.Printf("기본 시스템 시드 생성: %s", name)
	}

	// 사이클이 하나도 없으면 첫 사이클을 만들어 바로 사용할 수 있게 한다
	var cycleCount int64
	if err := db.Model(&models.TestCycle{}).Count(&cycleCount).Error; err != nil {
		return err
	}
	if cycleCount == 0 {
		if err := db.Create(&models.TestCycle{Name: "1차 QA"}).Error; err != nil {
			return err
		}
		log.Println("기본 테스트 사이클 생성: 1차 QA")
	}
	return nil
}
