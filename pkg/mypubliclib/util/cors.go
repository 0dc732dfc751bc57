package util

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// Cors CORS 中间件：只有 origins 列表内的来源才会拿到 CORS 头
// 列表里有 "*" 时放行所有来源（不带 credentials）
func Cors(origins []string) gin.HandlerFunc {
	wildcard := slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
			setAllow(c)
		case slices.Contains(origins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			setAllow(c)
		}
		// 对 OPTIONS 预检请求直接返回 204 No Content（浏览器跨域需要）
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func setAllow(c *gin.Context) {
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-Id, X-Request-Id")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
}
