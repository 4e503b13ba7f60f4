package api

import (
	"github.com/fyerfyer/pdf-search/api/handler"
	"github.com/fyerfyer/pdf-search/api/middleware"
	"github.com/fyerfyer/pdf-search/config"
	"github.com/gin-gonic/gin"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(searchHandler *handler.SearchHandler, cfg config.ServerConfig) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.SetTraceID())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	api := router.Group("/api")
	{
		searchGroup := api.Group("/search")
		{
			// 执行搜索 - POST /api/search
			// OCR开销大，只对搜索限流
			searchGroup.POST("", middleware.RateLimit(cfg.RateLimit, cfg.RateBurst), searchHandler.Search)

			// 导出结果 - GET /api/search/:id/export
			searchGroup.GET("/:id/export", searchHandler.Export)
		}

		// 健康检查 - GET /api/health
		api.GET("/health", searchHandler.Health)
	}

	return router
}
