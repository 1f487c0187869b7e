package biz

import "github.com/kart-io/iwac-chat/internal/model"

// Attribute 按上下文中的顺序返回文档引用，按文档 ID 去重。
func Attribute(block *ContextBlock) []model.Source {
	sources := make([]model.Source, 0)
	if block.Empty() {
		return sources
	}

	seen := make(map[string]struct{}, len(block.Documents))
	for _, doc := range block.Documents {
		if _, dup := seen[doc.ID]; dup {
			continue
		}
		seen[doc.ID] = struct{}{}
		sources = append(sources, doc.Source())
	}
	return sources
}
