package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	util "github.com/mindflow-app/mindflow-BE/pkg/mypubliclib/util"
)

const tokenUserKey = "token_user_id"

// Auth 可选的 JWT 鉴权：没带 token 直接放行，带了但无效则 401
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		tokenStr := util.ExtractToken(authHeader)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Malformed Authorization header"})
			return
		}
		claims, err := util.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Invalid or expired token"})
			return
		}
		// 将用户信息放入请求的上下文
		c.Set(tokenUserKey, claims.UserID)
		c.Set("is_guest", claims.IsGuest)
		c.Next()
	}
}
