package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fyerfyer/pdf-search/api/middleware"
	"github.com/fyerfyer/pdf-search/api/model"
	"github.com/fyerfyer/pdf-search/internal/diagnostics"
	"github.com/fyerfyer/pdf-search/internal/export"
	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Searcher 处理器依赖的搜索能力
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error)
	SaveResult(result *models.SearchResult) (string, error)
	GetResult(id string) (*models.SearchResult, error)
}

// SearchHandler 处理搜索相关的API请求
type SearchHandler struct {
	searcher Searcher       // 搜索服务
	timeout  time.Duration  // 单次搜索的超时时间，0表示不限制
	logger   *logrus.Logger // 日志记录器
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(searcher Searcher, timeout time.Duration) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		timeout:  timeout,
		logger:   middleware.GetLogger(),
	}
}

// Search 在服务端文件夹中搜索
// POST /api/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("invalid search request", err.Error()))
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	collector := diagnostics.NewCollector()
	ctx = diagnostics.NewContext(ctx, collector)

	result, err := h.searcher.Search(ctx, req.ToModel())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	// 保存失败只影响导出，搜索结果照常返回
	id, err := h.searcher.SaveResult(result)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to save search result")
		id = ""
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewSearchResponse(id, result, collector.Entries())))
}

// Export 导出已保存的搜索结果
// GET /api/search/:id/export?format=csv|xlsx
func (h *SearchHandler) Export(c *gin.Context) {
	var req model.ExportRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("invalid search id", err.Error()))
		return
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("invalid export query", err.Error()))
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	result, err := h.searcher.GetResult(req.ID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, result.Results); err != nil {
		middleware.HandleError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"search_id": req.ID,
		"format":    format,
		"rows":      len(result.Results),
	}).Info("Search result exported")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="resultados_%s.%s"`, req.ID, format))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Health 健康检查
// GET /api/health
func (h *SearchHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
