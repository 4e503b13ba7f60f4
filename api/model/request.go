package model

import "github.com/fyerfyer/pdf-search/internal/models"

// SearchRequest 搜索请求
type SearchRequest struct {
	Folder        string `json:"folder" binding:"required"`                                      // 服务端可访问的文件夹路径
	Term          string `json:"term" binding:"required"`                                        // 搜索词
	MatchPolicy   string `json:"match_policy" binding:"omitempty,oneof=substring word_boundary"` // 可选的匹配策略
	ExcerptLength int    `json:"excerpt_length" binding:"omitempty,min=1"`                       // 可选的摘录长度
}

// ToModel 转换为服务层请求
func (r SearchRequest) ToModel() models.SearchRequest {
	return models.SearchRequest{
		Folder:        r.Folder,
		Term:          r.Term,
		MatchPolicy:   r.MatchPolicy,
		ExcerptLength: r.ExcerptLength,
	}
}

// ExportRequest 导出请求
type ExportRequest struct {
	ID     string `uri:"id" binding:"required"` // 搜索ID
	Format string `form:"format"`               // 导出格式 csv 或 xlsx，默认csv
}
