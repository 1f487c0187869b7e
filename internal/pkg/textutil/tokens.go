package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CharsPerToken 是估算 token 数时每个 token 对应的字符数。
const CharsPerToken = 4

// CountTokens 估算文本的 token 数: ceil(runes / 4)。
// 对分段计数求和不会小于整体计数。
func CountTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// TruncateToTokens 将文本截断到不超过 maxTokens，尽量在词边界处截断并追加省略号。
func TruncateToTokens(s string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if CountTokens(s) <= maxTokens {
		return s
	}

	// 预留一个字符给省略号
	limit := maxTokens*CharsPerToken - 1
	runes := []rune(s)[:limit]

	cut := len(runes)
	for i := len(runes) - 1; i > limit/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + "…"
}
