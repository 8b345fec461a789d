package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReflectRequestedHeaders 在预检请求中回显 Access-Control-Request-Headers。
//
// 携带凭证时浏览器把 Access-Control-Allow-Headers: * 当作字面量，
// 只有回显请求的头部列表才能放行任意自定义头。需放在 CORS 中间件之前。
func ReflectRequestedHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions && c.GetHeader("Origin") != "" {
			if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
				c.Header("Access-Control-Allow-Headers", requested)
				c.Writer.Header().Add("Vary", "Access-Control-Request-Headers")
			}
		}

		c.Next()
	}
}
