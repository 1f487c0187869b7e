package biz

import (
	"strconv"
	"strings"

	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/internal/pkg/textutil"
)

// ContextBlock 是送入模型的上下文及其实际包含的文档。
type ContextBlock struct {
	Text      string
	Documents []*model.Document
	// Tokens 是各条目 token 估算值之和，不小于 CountTokens(Text)。
	Tokens int
	// Truncated 表示排名第一的文档超出预算而被截断。
	Truncated bool
}

// Empty 报告上下文是否不含任何文档。
func (b *ContextBlock) Empty() bool {
	return b == nil || len(b.Documents) == 0
}

// Assembler 在 token 预算内按排名贪心地拼接文档。
type Assembler struct {
	tokenBudget      int
	maxExcerptTokens int
}

// NewAssembler creates an assembler. maxExcerptTokens <= 0 keeps full texts.
func NewAssembler(tokenBudget, maxExcerptTokens int) *Assembler {
	return &Assembler{tokenBudget: tokenBudget, maxExcerptTokens: maxExcerptTokens}
}

// Assemble 依次追加文档，遇到第一篇超出预算的文档即停止。
// 排名第一的文档单独超出预算时截断其正文，保证上下文非空。
func (a *Assembler) Assemble(items []ScoredDocument) *ContextBlock {
	block := &ContextBlock{}
	if a.tokenBudget <= 0 {
		return block
	}

	var sb strings.Builder
	for i, item := range items {
		entry := a.entry(i+1, item.Document)
		cost := textutil.CountTokens(entry)

		if block.Tokens+cost > a.tokenBudget {
			if i > 0 {
				break
			}
			entry = a.truncatedEntry(item.Document)
			cost = textutil.CountTokens(entry)
			block.Truncated = true
		}

		sb.WriteString(entry)
		block.Tokens += cost
		block.Documents = append(block.Documents, item.Document)
		if block.Truncated {
			break
		}
	}
	block.Text = sb.String()
	return block
}

func (a *Assembler) entry(n int, doc *model.Document) string {
	content := doc.FullText
	if a.maxExcerptTokens > 0 {
		content = textutil.TruncateToTokens(content, a.maxExcerptTokens)
	}
	return entryHeader(n, doc) + content + "\n\n"
}

// truncatedEntry 把第一篇文档压缩到预算以内。
// 预算连条目头都放不下时截断整个条目。
func (a *Assembler) truncatedEntry(doc *model.Document) string {
	header := entryHeader(1, doc)
	avail := a.tokenBudget - textutil.CountTokens(header+"\n\n")
	if avail <= 0 {
		return textutil.TruncateToTokens(header, a.tokenBudget)
	}

	content := doc.FullText
	if a.maxExcerptTokens > 0 && a.maxExcerptTokens < avail {
		avail = a.maxExcerptTokens
	}
	return header + textutil.TruncateToTokens(content, avail) + "\n\n"
}

func entryHeader(n int, doc *model.Document) string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(strconv.Itoa(n))
	sb.WriteString("] Title: ")
	sb.WriteString(doc.Title)
	sb.WriteString("\nSubject: ")
	sb.WriteString(strings.Join(doc.Subject, ", "))
	sb.WriteString("\nPublisher: ")
	sb.WriteString(doc.Publisher)
	sb.WriteString("\nDate: ")
	sb.WriteString(doc.Date)
	sb.WriteString("\nContent: ")
	return sb.String()
}
