package tenantctx

import "github.com/gin-gonic/gin"

// GinMiddleware 从 X-Tenant-ID 头解析租户并注入请求 Context，缺省 "default"
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader("X-Tenant-ID")
		c.Request = c.Request.WithContext(WithTenant(c.Request.Context(), tenantID))
		c.Next()
	}
}
