/*
 * @module service/ai/service
 * @description AI 서비스 - Gemini 기반 QA 현황 인사이트(스트리밍)와 시나리오 초안 생성(JSON)
 * @architecture 분층 아키텍처 - 업무 서비스층
 * @documentReference ai_docs/ai_design.md
 * @stateFlow 한도 검사 -> 데이터 적재 -> 프롬프트 조립 -> Gemini 호출 -> 응답 파싱/중계
 * @rules GEMINI_API_KEY 미설정 시 비활성, 생성 결과는 저장하지 않고 초안으로만 반환한다
 * @dependencies google.golang.org/genai, qatrack-service/service/stats, qatrack-service/service/models
 * @refs service/ai/prompt.go, service/ai/ratelimit.go
 */

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"qatrack-service/service/models"
	"qatrack-service/service/stats"

	"google.golang.org/genai"
	"gorm.io/gorm"
)

// 서비스 상태 오류
var (
	ErrNotConfigured = errors.New("GEMINI_API_KEY 가 설정되지 않았습니다")
	ErrRateLimited   = errors.New("AI 호출 한도를 초과했습니다")
)

const defaultModel = "gemini-2.0-flash"

// Service AI 서비스. client 가 nil 이면 비활성 상태다.
type Service struct {
	db      *gorm.DB
	stats   *stats.Service
	client  *genai.Client
	limiter *RateLimiter
	model   string
}

// NewService AI 서비스 생성. API 키가 없으면 비활성 서비스를 반환한다 (호출 시 ErrNotConfigured).
func NewService(db *gorm.DB, apiKey string) *Service {
	svc := &Service{
		db:      db,
		stats:   stats.NewService(db),
		limiter: NewRateLimiter(),
		model:   getEnvWithDefault("GEMINI_MODEL", defaultModel),
	}

	if apiKey == "" {
		slog.Info("GEMINI_API_KEY 미설정, AI 기능 비활성")
		return svc
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Gemini 클라이언트 생성 실패, AI 기능 비활성", "error", err)
		return svc
	}

	svc.client = client
	slog.Info("AI 서비스 초기화", "model", svc.model)
	return svc
}

// Enabled AI 기능 활성 여부
func (s *Service) Enabled() bool {
	return s.client != nil
}

func (s *Service) guard(ctx context.Context) error {
	if s.client == nil {
		return ErrNotConfigured
	}
	limit, err := s.limiter.Check(ctx)
	if err != nil {
		return err
	}
	if !limit.Allowed {
		return ErrRateLimited
	}
	return nil
}

// StreamInsights 현재 사이클 집계로 현황 브리핑을 생성해 청크 단위로 emit 에 전달한다.
func (s *Service) StreamInsights(ctx context.Context, cycleID string, emit func(chunk string) error) error {
	if err := s.guard(ctx); err != nil {
		return err
	}

	dashboard, err := s.stats.GetDashboardStats(ctx, cycleID)
	if err != nil {
		return err
	}
	depthGroups, err := s.stats.GetDepthGroupStats(ctx, cycleID)
	if err != nil {
		return err
	}
	issues, err := s.stats.GetIssueStats(ctx, cycleID)
	if err != nil {
		return err
	}

	prompt := BuildInsightPrompt(dashboard, depthGroups, issues)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	for resp, err := range s.client.Models.GenerateContentStream(ctx, s.model, contents, nil) {
		if err != nil {
			return fmt.Errorf("인사이트 생성 실패: %w", err)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		if err := emit(text); err != nil {
			return err
		}
	}
	return nil
}

// GeneratedScenario 시나리오 초안. 저장은 사용자가 검토 후 별도로 수행한다.
type GeneratedScenario struct {
	Title            string            `json:"title"`
	BusinessContext  string            `json:"business_context"`
	Precondition     string            `json:"precondition"`
	Steps            string            `json:"steps"`
	ExpectedResult   string            `json:"expected_result"`
	RequirementNotes []RequirementNote `json:"requirement_notes"`
}

// RequirementNote 요구사항별 검증 노트
type RequirementNote struct {
	DisplayID  int    `json:"display_id"`
	VerifyNote string `json:"verify_note"`
}

// GenerateScenario 선택된 요구사항들로 시나리오 초안을 생성한다.
func (s *Service) GenerateScenario(ctx context.Context, scenarioType string, requirementIDs []string, businessContext string) (*GeneratedScenario, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	if !models.IsValidScenarioType(scenarioType) {
		return nil, fmt.Errorf("유효하지 않은 시나리오 유형: %s", scenarioType)
	}
	if len(requirementIDs) == 0 {
		return nil, errors.New("요구사항을 하나 이상 선택해야 합니다")
	}

	var requirements []models.Requirement
	if err := s.db.WithContext(ctx).
		Where("id IN ?", requirementIDs).
		Find(&requirements).Error; err != nil {
		return nil, err
	}
	if len(requirements) == 0 {
		return nil, errors.New("선택한 요구사항을 찾을 수 없습니다")
	}

	prompt := BuildScenarioPrompt(scenarioType, requirements, businessContext)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("시나리오 생성 실패: %w", err)
	}

	return parseGeneratedScenario(resp.Text())
}

// parseGeneratedScenario 모델 응답 텍스트를 초안으로 파싱한다.
// 파싱에 실패하면 응답 원문을 그대로 오류에 담아 호출자에게 드러낸다.
func parseGeneratedScenario(text string) (*GeneratedScenario, error) {
	raw := stripCodeFence(text)
	var generated GeneratedScenario
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, fmt.Errorf("시나리오 응답 파싱 실패: %v, 응답 원문: %s", err, text)
	}
	if generated.Title == "" {
		return nil, fmt.Errorf("시나리오 응답에 제목이 없습니다, 응답 원문: %s", text)
	}
	return &generated, nil
}

// stripCodeFence 모델이 JSON 을 코드 펜스로 감싸 보내는 경우를 정리
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Close 연결 자원 정리
func (s *Service) Close() error {
	return s.limiter.Close()
}
