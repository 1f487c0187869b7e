// Package textutil 提供对话检索相关的文本处理工具函数。
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/kart-io/iwac-chat/pkg/utils/json"
)

var (
	jsonArrayRegex  = regexp.MustCompile(`\[[\s\S]*\]`)
	listMarkerRegex = regexp.MustCompile(`^[\d\.\-\*\)•]+\s*`)
)

// HashString 计算字符串的 SHA-256 十六进制摘要。
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ParseJSONArray 从模型输出中提取并解析第一个 JSON 字符串数组。
// 模型常在数组前后附带说明文字或 markdown 代码块。
func ParseJSONArray(s string) ([]string, error) {
	match := jsonArrayRegex.FindString(s)
	if match == "" {
		return nil, fmt.Errorf("no JSON array found")
	}

	var result []string
	if err := json.Unmarshal([]byte(match), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SplitByLines 按行分割文本，移除列表标记、引号和空行。
// 单行输出再按逗号或分号切分。
func SplitByLines(s string) []string {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "`"))
	if s == "" {
		return nil
	}

	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		lines = strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	}

	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = listMarkerRegex.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.Trim(line, `"'«»[],`))
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}
