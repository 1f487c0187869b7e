package biz

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/pkg/llm"
	"github.com/kart-io/iwac-chat/pkg/llm/resilience"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

// GeneratorConfig 生成器配置。
type GeneratorConfig struct {
	// SystemPrompt 系统提示词，为空时使用 DefaultSystemPrompt。
	SystemPrompt string
	// MaxHistoryTurns 保留的最近历史轮数，<=0 表示不限。
	MaxHistoryTurns int
}

// Generator 负责答案生成。
type Generator struct {
	provider llm.ChatProvider
	retry    *resilience.RetryConfig
	config   GeneratorConfig
	metrics  *metrics.ChatMetrics
}

// NewGenerator 创建生成器实例。
func NewGenerator(provider llm.ChatProvider, retry *resilience.RetryConfig, config GeneratorConfig, m *metrics.ChatMetrics) *Generator {
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}
	m = orDefault(m)
	return &Generator{
		provider: provider,
		retry:    withRetryHook(retry, m, "generate"),
		config:   config,
		metrics:  m,
	}
}

// Generate 调用模型生成回答。
//
// 瞬时错误按重试策略退避重试，耗尽后返回 ErrGenerationTransient；
// 其余错误不重试，返回 ErrGenerationTerminal。
func (g *Generator) Generate(ctx context.Context, question string, block *ContextBlock, history []model.ConversationTurn) (string, error) {
	messages := g.Messages(question, block, history)

	var resp *llm.GenerateResponse
	err := resilience.RetryWithBackoff(ctx, g.retry, func(ctx context.Context) error {
		var callErr error
		resp, callErr = g.provider.Chat(ctx, messages)
		g.metrics.RecordLLMCall("generate", callErr)
		return callErr
	})
	if err != nil {
		return "", classifyGenerationError(err)
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return "", errors.ErrGenerationTerminal.WithMessage("Language model returned an empty answer")
	}

	fields := []any{"answer_length", len(answer), "provider", g.provider.Name()}
	if resp.TokenUsage != nil {
		fields = append(fields, "prompt_tokens", resp.TokenUsage.PromptTokens, "completion_tokens", resp.TokenUsage.CompletionTokens)
	}
	logger.Debugw("Answer generated", fields...)
	return answer, nil
}

// Messages 构造请求: 系统提示、历史对话和带上下文的当前问题。
func (g *Generator) Messages(question string, block *ContextBlock, history []model.ConversationTurn) []llm.Message {
	turns := historyMessages(history, g.config.MaxHistoryTurns)

	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: g.config.SystemPrompt})
	messages = append(messages, turns...)

	contextText := ""
	if block != nil {
		contextText = strings.TrimRight(block.Text, "\n")
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: answerPrompt(contextText, question)})
}

// historyMessages 保留最近 maxTurns 轮，丢弃空文本和开头的助手消息，
// 使对话以用户消息开始。
func historyMessages(history []model.ConversationTurn, maxTurns int) []llm.Message {
	if maxTurns > 0 && len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	messages := make([]llm.Message, 0, len(history))
	for _, turn := range history {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		role := llm.RoleUser
		if turn.Role == model.RoleAssistant {
			role = llm.RoleAssistant
		}
		if len(messages) == 0 && role == llm.RoleAssistant {
			continue
		}
		messages = append(messages, llm.Message{Role: role, Content: text})
	}
	return messages
}

func classifyGenerationError(err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.ErrRequestTimeout.WithCause(err)
	case stderrors.Is(err, context.Canceled):
		return errors.ErrGenerationTransient.WithCause(err)
	case stderrors.Is(err, resilience.ErrRetriesExhausted):
		return errors.ErrGenerationTransient.WithCause(err)
	case stderrors.Is(err, resilience.ErrCircuitBreakerOpen):
		return errors.ErrLLMUnavailable.WithCause(err)
	default:
		return errors.ErrGenerationTerminal.WithCause(err)
	}
}
