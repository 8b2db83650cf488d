/*
 * @module service/init
 * @description 서비스 초기화 모듈 - 데이터베이스 연결, 마이그레이션, 전역 서비스 구성
 * @architecture 분층 아키텍처 - 서비스층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 앱 기동 시 DB 연결 -> 마이그레이션/시드 -> 서비스 초기화 -> 스냅샷 작업 시작
 * @rules 모든 의존 서비스가 정상 기동한 뒤에만 API 를 제공한다
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs ai_docs/model.md
 */

package service

import (
	"fmt"
	"log"
	"os"

	"qatrack-service/service/ai"
	"qatrack-service/service/cycle"
	"qatrack-service/service/database"
	"qatrack-service/service/importer"
	"qatrack-service/service/requirement"
	"qatrack-service/service/result"
	"qatrack-service/service/scenario"
	"qatrack-service/service/snapshot"
	"qatrack-service/service/stats"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                       *gorm.DB
	GlobalCycleService       *cycle.Service
	GlobalRequirementService *requirement.Service
	GlobalResultService      *result.Service
	GlobalScenarioService    *scenario.Service
	GlobalStatsService       *stats.Service
	GlobalAIService          *ai.Service
	GlobalImportService      *importer.Service
	GlobalSnapshotService    *snapshot.Service
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 데이터베이스 연결 초기화
func initDatabase() {
	var dsn string

	// DATABASE_URL 환경변수를 우선 사용한다
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "qatrack")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Seoul",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("데이터베이스 연결 실패: %v", err)
	}

	log.Println("데이터베이스 연결 성공")
}

// getEnvWithDefault 환경변수 조회, 없으면 기본값 반환
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 데이터베이스 마이그레이션 실행
func runMigrations() {
	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("데이터베이스 마이그레이션 실패: %v", err)
	}
	log.Println("테이블 구조 마이그레이션 완료")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("기본 데이터 초기화 실패: %v", err)
	}
	log.Println("기본 데이터 초기화 완료")
}

// initServices 전역 서비스 초기화
func initServices() {
	GlobalCycleService = cycle.NewService(DB)
	GlobalRequirementService = requirement.NewService(DB)
	GlobalResultService = result.NewService(DB)
	GlobalScenarioService = scenario.NewService(DB)
	GlobalStatsService = stats.NewService(DB)
	GlobalAIService = ai.NewService(DB, os.Getenv("GEMINI_API_KEY"))
	GlobalImportService = importer.NewService(GlobalRequirementService)
	GlobalSnapshotService = snapshot.NewService(DB)

	if err := GlobalSnapshotService.Start(); err != nil {
		log.Printf("스냅샷 작업 시작 실패: %v", err)
	}

	log.Println("서비스 초기화 완료")
}
