package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	UserIDHeader = "x-user-id"
	// UserCookie 游客登录后写入的 cookie，浏览器端可以不自己带 userId
	UserCookie = "mindflow_uid"
	userIDKey  = "user_id"
)

// UserID 解析当前用户：query userId > x-user-id 头 > token > cookie
func UserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("userId")
		if id == "" {
			id = c.GetHeader(UserIDHeader)
		}
		if id == "" {
			id = c.GetString(tokenUserKey)
		}
		if id == "" {
			if v, err := c.Cookie(UserCookie); err == nil {
				id = v
			}
		}
		if id != "" {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// CurrentUser 返回 UserID 中间件解析出的用户 id，可能为空
func CurrentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// SetUserCookie 有效期一年；HttpOnly，开发环境不要求 HTTPS
func SetUserCookie(c *gin.Context, id string) {
	c.SetCookie(UserCookie, id, 3600*24*365, "/", "", false, true)
}
