package middleware

import (
	"math"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit 令牌桶限流，所有客户端共享一个桶
// OCR非常耗CPU，限制的是服务端整体负载而不是单个客户端
// perSecond <= 0 时不限流
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = int(math.Ceil(perSecond))
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("X-RateLimit-Limit", strconv.FormatFloat(perSecond, 'f', -1, 64))
			c.Header("Retry-After", "1")
			HandleError(c, NewRateLimitedError("too many search requests"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORS 跨域资源共享中间件
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-Trace-ID")
	cfg.ExposeHeaders = []string{"X-Trace-ID", "Content-Disposition"}
	return cors.New(cfg)
}
