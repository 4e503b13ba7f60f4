package document

import (
	"strings"

	"github.com/fyerfyer/pdf-search/internal/models"
)

// Parser 文档解析器接口
// 负责读取PDF的内嵌文本层
type Parser interface {
	// ReadText 读取文档的逐页文本
	ReadText(filePath string) (*TextLayer, error)
}

// TextLayer PDF的内嵌文本层
type TextLayer struct {
	// Pages 第i项为第i+1页的文本，扫描页为空字符串
	Pages []string
}

// PageCount 返回页数
func (t *TextLayer) PageCount() int {
	return len(t.Pages)
}

// Text 返回整个文档的文本，页之间以换页符分隔
func (t *TextLayer) Text() string {
	return strings.Join(t.Pages, "\f")
}

// Blank 文档是否没有任何可见文本
func (t *TextLayer) Blank() bool {
	for _, p := range t.Pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// PageText 一段提取到的文本及其来源
type PageText struct {
	Page   *int          `json:"page,omitempty"` // 为空表示文档级文本
	Text   string        `json:"text"`
	Source models.Source `json:"source"`
}

// Extraction 一个文档的提取结果
type Extraction struct {
	Pages []PageText `json:"pages"`
	// Embedded 文档是否由内嵌文本层完整处理
	Embedded bool `json:"embedded"`
}

