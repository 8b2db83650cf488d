/*
 * @module service/cycle/service
 * @description 테스트 사이클 서비스 - 사이클 생성/조회/종료
 * @architecture 분층 아키텍처 - 업무 서비스층
 * @documentReference ai_docs/requirements.md
 * @stateFlow 사이클 생성 -> 결과 기록 대상 사이클 선택 -> 종료
 * @rules 종료된 사이클의 결과는 그대로 보존되어 사이클 간 비교에 쓰인다
 * @dependencies qatrack-service/service/models, gorm.io/gorm
 * @refs service/models/qa.go
 */

package cycle

import (
	"context"
	"errors"
	"time"

	"qatrack-service/service/models"

	"gorm.io/gorm"
)

// Service 테스트 사이클 서비스
type Service struct {
	db *gorm.DB
}

// NewService 사이클 서비스 생성
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create 사이클 생성. 시작 시각은 생성 시각으로 잡는다.
func (s *Service) Create(ctx context.Context, name string) (*models.TestCycle, error) {
	if name == "" {
		return nil, errors.New("사이클 이름은 필수입니다")
	}

	now := time.Now()
	c := &models.TestCycle{Name: name, StartedAt: &now}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// List 사이클 목록 (최신순)
func (s *Service) List(ctx context.Context) ([]models.TestCycle, error) {
	var cycles []models.TestCycle
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

// GetByID 사이클 단건 조회
func (s *Service) GetByID(ctx context.Context, id string) (*models.TestCycle, error) {
	var c models.TestCycle
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Close 사이클 종료. 이미 종료된 사이클이면 그대로 둔다.
func (s *Service) Close(ctx context.Context, id string) (*models.TestCycle, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.EndedAt != nil {
		return c, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).
		Model(&models.TestCycle{}).
		Where("id = ?", id).
		Update("ended_at", now).Error; err != nil {
		return nil, err
	}
	c.EndedAt = &now
	return c, nil
}
