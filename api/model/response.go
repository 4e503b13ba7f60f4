package model

import (
	"github.com/fyerfyer/pdf-search/internal/diagnostics"
	"github.com/fyerfyer/pdf-search/internal/models"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// SearchResultItem 单条命中
type SearchResultItem struct {
	Document string `json:"document"`       // 文件名
	Page     *int   `json:"page,omitempty"` // 页码，文档级命中时为空
	Excerpt  string `json:"excerpt"`        // 高亮摘录
	Source   string `json:"source"`         // 文本来源
}

// DiagnosticInfo 单条诊断
type DiagnosticInfo struct {
	Kind     string `json:"kind"`
	Document string `json:"document"`
	Page     int    `json:"page,omitempty"`
	Source   string `json:"source,omitempty"`
	Preview  string `json:"preview,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SearchResponse 搜索响应
type SearchResponse struct {
	SearchID    string             `json:"search_id,omitempty"` // 用于导出的搜索ID
	Term        string             `json:"term"`                // 搜索词
	Documents   int                `json:"documents"`           // 枚举到的PDF数量
	Failed      int                `json:"failed"`              // 提取失败的文档数量
	Results     []SearchResultItem `json:"results"`             // 命中列表
	Diagnostics []DiagnosticInfo   `json:"diagnostics"`         // 处理过程诊断
}

// NewSearchResponse 将搜索结果转换为响应
func NewSearchResponse(id string, res *models.SearchResult, entries []diagnostics.Entry) SearchResponse {
	resp := SearchResponse{
		SearchID:    id,
		Term:        res.Term,
		Documents:   res.Documents,
		Failed:      res.Failed,
		Results:     make([]SearchResultItem, 0, len(res.Results)),
		Diagnostics: make([]DiagnosticInfo, 0, len(entries)),
	}
	for _, r := range res.Results {
		resp.Results = append(resp.Results, SearchResultItem{
			Document: r.DocumentName,
			Page:     r.Page,
			Excerpt:  r.Excerpt,
			Source:   r.Source.String(),
		})
	}
	for _, e := range entries {
		resp.Diagnostics = append(resp.Diagnostics, DiagnosticInfo{
			Kind:     string(e.Kind),
			Document: e.Document,
			Page:     e.Page,
			Source:   e.Source,
			Preview:  e.Preview,
			Error:    e.Err,
		})
	}
	return resp
}
