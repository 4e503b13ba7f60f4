package matcher

import (
	"regexp"
	"strings"
	"unicode"
)

// 高亮标记
const (
	MarkOpen  = ">>>"
	MarkClose = "<<<"
)

// CleanText 统一换行并删除控制字符，结果可以原样写入CSV和XLSX
// \r\n、\r、换页符和垂直制表符都变为 \n，制表符保留
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\t':
			return r
		case '\r', '\f', '\v':
			return '\n'
		case '\uFFFE', '\uFFFF':
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// Highlight 截取清理后文本的前 limit 个字符，用标记包裹搜索词的每一处出现
// 忽略大小写，保留原文大小写；只用于展示，不影响匹配结果
// limit <= 0 表示不截断
func Highlight(text, term string, limit int) string {
	excerpt := Prefix(CleanText(text), limit)
	if strings.TrimSpace(term) == "" {
		return excerpt
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(term))
	if err != nil {
		return excerpt
	}
	return re.ReplaceAllString(excerpt, MarkOpen+"${0}"+MarkClose)
}

// Prefix 按字符（而非字节）截取前 n 个字符
func Prefix(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
