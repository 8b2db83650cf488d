/*
 * @module service/ai/prompt
 * @description AI 프롬프트 빌더 - QA 현황 인사이트와 시나리오 생성 프롬프트 조립
 * @architecture 도구층 - 순수 문자열 조립
 * @documentReference ai_docs/ai_design.md
 * @stateFlow 집계/요구사항 데이터 -> 프롬프트 문자열
 * @rules 시나리오 생성은 JSON 응답을 강제한다, 인사이트는 한국어 서술형
 * @dependencies qatrack-service/service/stats, qatrack-service/service/models
 * @refs service/ai/service.go
 */

package ai

import (
	"fmt"
	"strings"

	"qatrack-service/service/models"
	"qatrack-service/service/stats"
)

// BuildInsightPrompt 대시보드 집계를 QA 리드 관점의 현황 브리핑 프롬프트로 조립
func BuildInsightPrompt(dashboard *stats.DashboardStats, depthGroups []stats.DepthGroupStat, issues *stats.IssueStats) string {
	var b strings.Builder

	b.WriteString("당신은 B2B 도매 플랫폼의 QA 리드입니다. 아래 테스트 현황 데이터를 바탕으로 한국어 브리핑을 작성하세요.\n\n")

	b.WriteString("## 전체 현황\n")
	writeCounts(&b, dashboard.Total)
	b.WriteString(fmt.Sprintf("- 진행률: %d%%\n\n", stats.ComputeProgressRate(dashboard.Total)))

	b.WriteString("## 시스템별 현황\n")
	for _, sys := range dashboard.BySystem {
		b.WriteString(fmt.Sprintf("### %s (진행률 %d%%)\n", sys.System.Name, sys.ProgressRate))
		writeCounts(&b, sys.Counts)
	}

	if len(depthGroups) > 0 {
		b.WriteString("\n## 기능영역별 현황\n")
		for _, g := range depthGroups {
			b.WriteString(fmt.Sprintf("- [%s] %s: 진행률 %d%%, Fail %d, Block %d, 미테스트 %d\n",
				g.SystemName, g.Depth0, g.ProgressRate, g.Counts.Fail, g.Counts.Block, g.Counts.Untested))
		}
	}

	if issues != nil {
		b.WriteString("\n## 이슈 현황\n")
		b.WriteString(fmt.Sprintf("- Fail %d건, Block %d건\n", issues.FailCount, issues.BlockCount))
		b.WriteString(fmt.Sprintf("- 이슈 항목: 제기 %d건, 수정 완료 %d건\n", issues.ItemRaisedCount, issues.ItemFixedCount))
	}

	b.WriteString(`
다음 구성으로 작성하세요:
1. 한 줄 요약 (전체 진행 상태와 가장 큰 리스크)
2. 시스템별 주목할 점 (진행이 늦거나 실패가 몰린 곳)
3. 권장 다음 행동 3가지 (구체적으로, 우선순위 순)

불릿 중심으로 간결하게 작성하고, 데이터에 없는 내용은 지어내지 마세요.`)

	return b.String()
}

func writeCounts(b *strings.Builder, c stats.StatusCount) {
	b.WriteString(fmt.Sprintf("- Pass %d / Fail %d / Block %d / In Progress %d / 미테스트 %d (총 %d)\n",
		c.Pass, c.Fail, c.Block, c.InProgress, c.Untested, c.Total))
}

// BuildScenarioPrompt 선택된 요구사항들로부터 시나리오 초안 생성 프롬프트 조립.
// 응답은 JSON 하나로 강제한다.
func BuildScenarioPrompt(scenarioType string, requirements []models.Requirement, businessContext string) string {
	var b strings.Builder

	b.WriteString("당신은 B2B 도매 플랫폼(쇼핑몰/공급사/관리자)의 시니어 QA 엔지니어입니다.\n")
	b.WriteString(fmt.Sprintf("아래 요구사항들을 검증하는 %s 테스트 시나리오 초안을 한국어로 작성하세요.\n\n", scenarioType))

	if businessContext != "" {
		b.WriteString("## 업무 맥락\n")
		b.WriteString(businessContext)
		b.WriteString("\n\n")
	}

	b.WriteString("## 대상 요구사항\n")
	for _, req := range requirements {
		displayID := 0
		if req.DisplayID != nil {
			displayID = *req.DisplayID
		}
		name := ""
		if req.FeatureName != nil {
			name = *req.FeatureName
		}
		b.WriteString(fmt.Sprintf("### #%d %s\n", displayID, name))
		if path := req.DepthPath(); path != "" {
			b.WriteString(fmt.Sprintf("- 분류: %s\n", path))
		}
		if req.OriginalSpec != nil && *req.OriginalSpec != "" {
			b.WriteString(fmt.Sprintf("- 요구사항: %s\n", *req.OriginalSpec))
		}
		if req.CurrentPolicy != nil && *req.CurrentPolicy != "" {
			b.WriteString(fmt.Sprintf("- 현재 정책: %s\n", *req.CurrentPolicy))
		}
	}

	b.WriteString(`
다음 JSON 형식 하나만 응답하세요. JSON 밖의 텍스트는 출력하지 마세요.
{
  "title": "시나리오 제목",
  "business_context": "이 시나리오가 검증하는 업무 흐름 설명",
  "precondition": "사전 조건",
  "steps": "1. 단계...\n2. 단계...",
  "expected_result": "기대 결과",
  "requirement_notes": [
    {"display_id": 1, "verify_note": "이 요구사항이 검증되는 단계와 방법"}
  ]
}
steps 는 번호 매긴 줄바꿈 문자열이며, requirement_notes 는 대상 요구사항 전부를 포함해야 합니다.`)

	return b.String()
}
