/*
 * @module service/snapshot/service
 * @description 진행률 스냅샷 서비스 - 사이클별 일일 상태 카운트를 적재해 번다운 추이를 만든다
 * @architecture 분층 아키텍처 - 업무 서비스층 + 백그라운드 작업
 * @documentReference ai_docs/requirements.md
 * @stateFlow cron 트리거 -> 열린 사이클 조회 -> 전체/시스템별 집계 -> 스냅샷 행 적재
 * @rules 종료된 사이클은 스냅샷 대상에서 제외, 수동 트리거는 cron 과 같은 경로를 쓴다
 * @dependencies github.com/robfig/cron/v3, qatrack-service/service/stats, qatrack-service/service/models
 * @refs service/stats/aggregator.go
 */

package snapshot

import (
	"context"
	"log/slog"
	"os"

	"qatrack-service/service/models"
	"qatrack-service/service/stats"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// 매일 06:00 (결과 입력이 거의 없는 업무 시작 전 시각)
const defaultSchedule = "0 0 6 * * *"

// Service 진행률 스냅샷 서비스
type Service struct {
	db    *gorm.DB
	stats *stats.Service
	cron  *cron.Cron
}

// NewService 스냅샷 서비스 생성
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:    db,
		stats: stats.NewService(db),
		cron:  cron.New(cron.WithSeconds()),
	}
}

// Start 일일 스냅샷 작업 등록 및 시작
func (s *Service) Start() error {
	schedule := defaultSchedule
	if env := os.Getenv("SNAPSHOT_CRON"); env != "" {
		schedule = env
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.SnapshotOpenCycles(context.Background()); err != nil {
			slog.Error("일일 스냅샷 적재 실패", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("진행률 스냅샷 작업 시작", "schedule", schedule)
	return nil
}

// Stop 작업 중지
func (s *Service) Stop() {
	s.cron.Stop()
}

// SnapshotOpenCycles 종료되지 않은 모든 사이클의 스냅샷을 적재한다.
func (s *Service) SnapshotOpenCycles(ctx context.Context) error {
	var cycles []models.TestCycle
	if err := s.db.WithContext(ctx).
		Where("ended_at IS NULL").
		Find(&cycles).Error; err != nil {
		return err
	}

	for _, cycle := range cycles {
		if err := s.SnapshotCycle(ctx, cycle.ID); err != nil {
			slog.Error("사이클 스냅샷 적재 실패", "cycle_id", cycle.ID, "error", err)
		}
	}
	return nil
}

// SnapshotCycle 한 사이클의 전체/시스템별 스냅샷 행을 적재한다. 수동 트리거 API 도 이 경로를 쓴다.
func (s *Service) SnapshotCycle(ctx context.Context, cycleID string) error {
	dashboard, err := s.stats.GetDashboardStats(ctx, cycleID)
	if err != nil {
		return err
	}

	rows := []*models.ProgressSnapshot{buildRow(cycleID, nil, dashboard.Total)}
	for _, sys := range dashboard.BySystem {
		systemID := sys.System.ID
		rows = append(rows, buildRow(cycleID, &systemID, sys.Counts))
	}

	for _, row := range rows {
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
	}

	slog.Info("진행률 스냅샷 적재", "cycle_id", cycleID, "rows", len(rows))
	return nil
}

func buildRow(cycleID string, systemID *string, counts stats.StatusCount) *models.ProgressSnapshot {
	return &models.ProgressSnapshot{
		CycleID:      cycleID,
		SystemID:     systemID,
		PassCount:    counts.Pass,
		FailCount:    counts.Fail,
		BlockCount:   counts.Block,
		InProgress:   counts.InProgress,
		Untested:     counts.Untested,
		Total:        counts.Total,
		ProgressRate: stats.ComputeProgressRate(counts),
	}
}
