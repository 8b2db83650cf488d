/*
 * @module service/ai/ratelimit
 * @description AI 호출 한도 제한기 - Redis 고정 윈도우 카운터로 분당/일일 호출량 제한
 * @architecture 도구층 - AI 서비스 전용 보호 장치
 * @documentReference ai_docs/ai_design.md
 * @stateFlow 규칙 검사 -> Redis 원자 카운트 -> 초과 판정
 * @rules Lua 스크립트로 INCR/EXPIRE 를 원자 실행, Redis 미구성 시 제한 없이 통과
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/ai/service.go
 */

package ai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// LimitResult 한도 검사 결과
type LimitResult struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetAt   int64 `json:"reset_at"`
}

// LimitRule 한도 규칙
type LimitRule struct {
	Scope       string // minute/daily
	TimeWindow  int    // 윈도우(초)
	MaxRequests int
}

// RateLimiter AI 호출 한도 제한기. client 가 nil 이면 제한 없이 통과한다.
type RateLimiter struct {
	client *redis.Client
	rules  []LimitRule
}

// NewRateLimiter Redis 연결을 시도해 제한기를 만든다.
// REDIS_HOST 미설정이면 비활성 제한기를 반환한다 (AI 기능은 Redis 없이도 동작해야 한다).
func NewRateLimiter() *RateLimiter {
	rules := []LimitRule{
		{Scope: "minute", TimeWindow: 60, MaxRequests: 10},
		{Scope: "daily", TimeWindow: 86400, MaxRequests: 300},
	}

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		slog.Info("REDIS_HOST 미설정, AI 호출 한도 제한 비활성")
		return &RateLimiter{rules: rules}
	}
	port := getEnvWithDefault("REDIS_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis 연결 실패, AI 호출 한도 제한 비활성", "error", err)
		return &RateLimiter{rules: rules}
	}

	slog.Info("AI 호출 한도 제한기 초기화", "redis_host", host, "redis_port", port)
	return &RateLimiter{client: client, rules: rules}
}

// Check 모든 규칙을 순서대로 검사한다. 하나라도 초과하면 즉시 반환한다.
func (r *RateLimiter) Check(ctx context.Context) (*LimitResult, error) {
	if r.client == nil {
		return &LimitResult{Allowed: true, Limit: -1, Remaining: -1}, nil
	}

	var last *LimitResult
	for _, rule := range r.rules {
		result, err := r.checkRule(ctx, rule)
		if err != nil {
			// 제한기 장애가 AI 기능을 끌어내리면 안 된다
			slog.Warn("한도 검사 실패, 통과 처리", "scope", rule.Scope, "error", err)
			return &LimitResult{Allowed: true, Limit: -1, Remaining: -1}, nil
		}
		if !result.Allowed {
			return result, nil
		}
		last = result
	}
	return last, nil
}

func (r *RateLimiter) checkRule(ctx context.Context, rule LimitRule) (*LimitResult, error) {
	window := time.Now().Unix() / int64(rule.TimeWindow)
	key := fmt.Sprintf("ai_limit:%s:%d", rule.Scope, window)

	script := `
		local key = KEYS[1]
		local max_requests = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])

		local current = redis.call('GET', key)
		if current == false then
			current = 0
		else
			current = tonumber(current)
		end

		if current >= max_requests then
			local ttl = redis.call('TTL', key)
			if ttl == -1 then
				ttl = window
			end
			return {0, current, ttl}
		end

		local new_count = redis.call('INCR', key)
		if new_count == 1 then
			redis.call('EXPIRE', key, window)
		end

		local ttl = redis.call('TTL', key)
		if ttl == -1 then
			ttl = window
		end
		return {1, new_count, ttl}
	`

	raw, err := r.client.Eval(ctx, script, []string{key}, rule.MaxRequests, rule.TimeWindow).Result()
	if err != nil {
		return nil, err
	}

	results := raw.([]interface{})
	allowed := results[0].(int64) == 1
	current := int(results[1].(int64))
	ttl := int(results[2].(int64))

	remaining := rule.MaxRequests - current
	if remaining < 0 {
		remaining = 0
	}
	return &LimitResult{
		Allowed:   allowed,
		Limit:     rule.MaxRequests,
		Remaining: remaining,
		ResetAt:   time.Now().Add(time.Duration(ttl) * time.Second).Unix(),
	}, nil
}

// Close Redis 클라이언트 종료
func (r *RateLimiter) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
