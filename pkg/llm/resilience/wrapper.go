package resilience

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/kart-io/iwac-chat/pkg/llm"
)

// ResilientChatProvider 为 Chat Provider 增加熔断与客户端限流。
// 重试由调用方按各自的 RetryConfig 执行，每次尝试都经过本包装器。
type ResilientChatProvider struct {
	provider llm.ChatProvider
	cb       *CircuitBreaker
	limiter  *rate.Limiter
}

// NewResilientChatProvider 创建带韧性功能的 Chat Provider。
// limiter 为 nil 时不限流。
func NewResilientChatProvider(provider llm.ChatProvider, cbConfig *CircuitBreakerConfig, limiter *rate.Limiter) *ResilientChatProvider {
	return &ResilientChatProvider{
		provider: provider,
		cb:       NewCircuitBreaker(cbConfig),
		limiter:  limiter,
	}
}

// NewLimiter 按每秒请求数和突发量创建限流器，rps <= 0 时返回 nil。
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (r *ResilientChatProvider) call(ctx context.Context, fn func() (*llm.GenerateResponse, error)) (*llm.GenerateResponse, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, limiterError(ctx, err)
		}
	}

	var resp *llm.GenerateResponse
	err := r.cb.ExecuteCounting(func() error {
		var err error
		resp, err = fn()
		return err
	}, IsRetryableError)
	return resp, err
}

// limiterError 让限流等待的失败可以按 context 错误分类。
// Wait 在截止时间不足以等到令牌时直接返回，不包装 context.DeadlineExceeded。
func limiterError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

// Chat 进行多轮对话。
func (r *ResilientChatProvider) Chat(ctx context.Context, messages []llm.Message) (*llm.GenerateResponse, error) {
	return r.call(ctx, func() (*llm.GenerateResponse, error) {
		return r.provider.Chat(ctx, messages)
	})
}

// Generate 根据提示生成文本。
func (r *ResilientChatProvider) Generate(ctx context.Context, prompt string, systemPrompt string) (*llm.GenerateResponse, error) {
	return r.call(ctx, func() (*llm.GenerateResponse, error) {
		return r.provider.Generate(ctx, prompt, systemPrompt)
	})
}

// Name 返回底层供应商名称。
func (r *ResilientChatProvider) Name() string {
	return r.provider.Name()
}

// CircuitBreaker 获取熔断器实例（用于监控）。
func (r *ResilientChatProvider) CircuitBreaker() *CircuitBreaker {
	return r.cb
}

// GetChatProviderStats 获取 Chat Provider 熔断统计，非韧性包装时返回 nil。
func GetChatProviderStats(provider llm.ChatProvider) *Stats {
	if rp, ok := provider.(*ResilientChatProvider); ok {
		s := rp.cb.Stats()
		return &s
	}
	return nil
}
