package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ligatures = strings.NewReplacer("œ", "oe", "Œ", "oe", "æ", "ae", "Æ", "ae", "’", "'", "ʼ", "'")

// Normalize 转为小写并去除变音符号: "Kérékou" -> "kerekou"。
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, ligatures.Replace(s))
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// Tokenize 返回归一化后的检索词条，去除停用词和单字符词。
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(Normalize(s), isSeparator)
	tokens := fields[:0]
	for _, f := range fields {
		if keepToken(f) {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// SignificantWords 返回问题中保留原始写法的非停用词，按出现顺序去重。
func SignificantWords(s string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, w := range strings.FieldsFunc(ligatures.Replace(s), isSeparator) {
		key := Normalize(w)
		if !keepToken(key) {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, w)
	}
	return words
}

func keepToken(normalized string) bool {
	if len([]rune(normalized)) < 2 {
		return false
	}
	return !IsStopword(normalized)
}

// IsStopword 判断归一化后的词是否为法语或英语停用词。
func IsStopword(normalized string) bool {
	_, ok := stopwords[normalized]
	return ok
}
