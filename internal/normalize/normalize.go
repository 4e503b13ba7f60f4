// Package normalize 将提取文本与搜索词规范化为可比较的形式
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// 兼容分解后丢弃所有非ASCII残留（变音符号、特殊符号等）
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// Normalize 兼容分解、去除非ASCII字符并转为小写
func Normalize(text string) string {
	folded, _, err := transform.String(asciiFold, text)
	if err != nil {
		// transform 只会在非法输入上失败，退化为逐字符过滤
		folded = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, text)
	}
	return strings.ToLower(folded)
}

// StripToAlnum 只保留ASCII字母和数字并转为小写
// OCR经常破坏空格和标点，但很少破坏字母数字
func StripToAlnum(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// Compact 两阶段规范化：StripToAlnum(Normalize(text))
func Compact(text string) string {
	return StripToAlnum(Normalize(text))
}

// Tokens 返回规范化文本中的字母数字片段
func Tokens(text string) []string {
	return strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
