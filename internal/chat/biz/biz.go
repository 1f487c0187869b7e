// Package biz 实现问答流水线：关键词提取、检索、上下文组装、回答生成与来源归属。
package biz

import (
	"time"

	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/pkg/llm/resilience"
)

// metricsNamespace 是未注入指标时使用的指标前缀。
const metricsNamespace = "iwac_chat"

func orDefault(m *metrics.ChatMetrics) *metrics.ChatMetrics {
	if m == nil {
		return metrics.New(metricsNamespace)
	}
	return m
}

// withRetryHook 复制重试策略并在每次重试时记录指标，不修改调用方传入的配置。
func withRetryHook(cfg *resilience.RetryConfig, m *metrics.ChatMetrics, operation string) *resilience.RetryConfig {
	if cfg == nil {
		cfg = resilience.DefaultRetryConfig()
	}
	c := *cfg
	next := cfg.OnRetry
	c.OnRetry = func(attempt int, delay time.Duration, err error) {
		m.RecordLLMRetry(operation)
		if next != nil {
			next(attempt, delay, err)
		}
	}
	return &c
}
