package models

import (
	"fmt"
	"time"
)

// Document 待搜索的PDF文件，枚举后不再修改
type Document struct {
	Name    string    `json:"name"`     // 文件名，作为文档标识
	Path    string    `json:"path"`     // 完整路径
	Size    int64     `json:"size"`     // 文件大小（字节）
	ModTime time.Time `json:"mod_time"` // 修改时间
}

// DocumentState 单个文档在一次搜索中的处理状态
type DocumentState string

const (
	// DocStatePending 等待处理
	DocStatePending DocumentState = "pending"
	// DocStateEmbeddedTextTried 已读取内嵌文本层
	DocStateEmbeddedTextTried DocumentState = "embedded_text_tried"
	// DocStateOCRFallback 文本层为空，已回退到OCR
	DocStateOCRFallback DocumentState = "ocr_fallback"
	// DocStateMatched 找到搜索词
	DocStateMatched DocumentState = "matched"
	// DocStateNotMatched 未找到搜索词
	DocStateNotMatched DocumentState = "not_matched"
	// DocStateErrored 提取失败
	DocStateErrored DocumentState = "errored"
	// DocStateDone 终态
	DocStateDone DocumentState = "done"
)

// 有效的状态转换
var validTransitions = map[DocumentState][]DocumentState{
	DocStatePending:           {DocStateEmbeddedTextTried, DocStateErrored},
	DocStateEmbeddedTextTried: {DocStateMatched, DocStateNotMatched, DocStateOCRFallback, DocStateErrored},
	DocStateOCRFallback:       {DocStateMatched, DocStateNotMatched, DocStateErrored},
	DocStateMatched:           {DocStateDone},
	DocStateNotMatched:        {DocStateDone},
	DocStateErrored:           {DocStateDone},
	DocStateDone:              {},
}

// ValidateStateTransition 验证状态转换的有效性
func ValidateStateTransition(from, to DocumentState) error {
	for _, next := range validTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("invalid state transition: %s -> %s", from, to)
}
