package models

import (
	"strconv"
	"strings"
)

// Source 文本来源
type Source int

const (
	// SourceEmbeddedText PDF内嵌文本层
	SourceEmbeddedText Source = iota
	// SourceOCR 光栅化后OCR识别
	SourceOCR
)

// 导出时使用的来源标签
const (
	LabelEmbeddedText = "Texto embutido"
	LabelOCR          = "OCR"
)

// String 返回来源的枚举名
func (s Source) String() string {
	switch s {
	case SourceEmbeddedText:
		return "EmbeddedText"
	case SourceOCR:
		return "OCR"
	default:
		return "Unknown"
	}
}

// Label 返回导出文件中使用的来源标签
func (s Source) Label() string {
	if s == SourceOCR {
		return LabelOCR
	}
	return LabelEmbeddedText
}

// MarshalText 以枚举名序列化
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 接受枚举名或导出标签
func (s *Source) UnmarshalText(b []byte) error {
	src, ok := ParseSource(string(b))
	if !ok {
		return &InputError{Field: "source", Reason: "unknown source " + strconv.Quote(string(b))}
	}
	*s = src
	return nil
}

// ParseSource 解析来源标签
func ParseSource(s string) (Source, bool) {
	switch strings.TrimSpace(s) {
	case "EmbeddedText", LabelEmbeddedText:
		return SourceEmbeddedText, true
	case "OCR":
		return SourceOCR, true
	default:
		return 0, false
	}
}

// PageResult 一个命中的页面（或整个文档）
type PageResult struct {
	DocumentName string `json:"document_name"`
	Page         *int   `json:"page,omitempty"` // 为空表示文档级命中
	Excerpt      string `json:"excerpt"`
	Source       Source `json:"source"`
}

// PageLabel 页码的显示形式，文档级命中为"?"
func (r PageResult) PageLabel() string {
	if r.Page == nil {
		return "?"
	}
	return strconv.Itoa(*r.Page)
}

// SearchRequest 一次搜索请求
type SearchRequest struct {
	Folder string
	Term   string

	// 可选覆盖项，空值表示使用服务默认配置
	MatchPolicy   string
	ExcerptLength int
}

// SearchResult 一次搜索的结果
// Results 按文档枚举顺序、文档内按页码顺序排列
type SearchResult struct {
	Term      string       `json:"term"`
	Results   []PageResult `json:"results"`
	Documents int          `json:"documents"` // 枚举到的PDF数量
	Failed    int          `json:"failed"`    // 提取失败的文档数量
}

// IntPtr 返回页码指针
func IntPtr(n int) *int {
	return &n
}
