// Package handler provides HTTP handlers for the chat service.
package handler

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/iwac-chat/internal/chat/biz"
	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/pkg/llm"
	"github.com/kart-io/iwac-chat/pkg/llm/resilience"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
	"github.com/kart-io/iwac-chat/pkg/utils/json"
	"github.com/kart-io/iwac-chat/pkg/utils/response"
	"github.com/kart-io/iwac-chat/pkg/validator"
)

// ChatHandler handles chat HTTP requests.
type ChatHandler struct {
	pipeline *biz.Pipeline
	corpus   *biz.CorpusManager
	provider llm.ChatProvider
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(pipeline *biz.Pipeline, corpus *biz.CorpusManager, provider llm.ChatProvider) *ChatHandler {
	return &ChatHandler{
		pipeline: pipeline,
		corpus:   corpus,
		provider: provider,
	}
}

// Chat 回答一个问题。降级回答同样返回 200。
func (h *ChatHandler) Chat(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Fail(c, errors.ErrInvalidChatRequest.WithCause(err))
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		response.Fail(c, errors.ErrInvalidChatRequest.WithMessages("Request body is empty", "Le corps de la requête est vide"))
		return
	}
	var req model.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		response.Fail(c, errors.ErrInvalidChatRequest.WithCause(err))
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		response.Fail(c, errors.ErrEmptyQuestion)
		return
	}
	if verr := validator.StructWithLang(&req, response.Lang(c)); verr.HasErrors() {
		response.FailWithValidation(c, verr)
		return
	}

	response.OK(c, h.pipeline.Answer(c.Request.Context(), req.Question, req.History))
}

// Document 返回单篇文档的引用信息与正文。
func (h *ChatHandler) Document(c *gin.Context) {
	doc, err := h.corpus.Document(c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, model.DocumentView{
		ID:       doc.ID,
		Source:   doc.Source(),
		Language: doc.Language,
		Subject:  doc.Subject,
		Spatial:  doc.Spatial,
		FullText: doc.FullText,
	})
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Documents  int               `json:"documents"`
	Vocabulary int               `json:"vocabulary"`
	Source     string            `json:"source"`
	LoadedAt   *time.Time        `json:"loaded_at,omitempty"`
	Reloads    int64             `json:"reloads"`
	Provider   string            `json:"provider"`
	Cache      bool              `json:"cache"`
	Breaker    *resilience.Stats `json:"breaker,omitempty"`
	Metrics    metrics.Snapshot  `json:"metrics"`
}

// Stats 返回语料与服务统计信息。
func (h *ChatHandler) Stats(c *gin.Context) {
	corpus := h.corpus.Current()
	resp := StatsResponse{
		Documents: corpus.Len(),
		Reloads:   h.corpus.Reloads(),
		Provider:  h.provider.Name(),
		Cache:     h.pipeline.Cache().Enabled(),
		Breaker:   resilience.GetChatProviderStats(h.provider),
		Metrics:   h.pipeline.Metrics().Snapshot(),
	}
	if corpus != nil {
		loadedAt := corpus.LoadedAt()
		resp.Vocabulary = corpus.Index().VocabularySize()
		resp.Source = corpus.Source()
		resp.LoadedAt = &loadedAt
	}

	response.OK(c, resp)
}

// ReloadResponse is the body of POST /api/corpus/reload.
type ReloadResponse struct {
	Documents int    `json:"documents"`
	Source    string `json:"source"`
	Reloads   int64  `json:"reloads"`
}

// Reload 从配置的来源重新加载语料，失败时旧语料继续服务。
func (h *ChatHandler) Reload(c *gin.Context) {
	corpus, err := h.corpus.Reload(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.OK(c, ReloadResponse{
		Documents: corpus.Len(),
		Source:    corpus.Source(),
		Reloads:   h.corpus.Reloads(),
	})
}

// Healthz 存活检查。
func (h *ChatHandler) Healthz(c *gin.Context) {
	response.OK(c, gin.H{
		"status":    "ok",
		"documents": h.corpus.Current().Len(),
	})
}
