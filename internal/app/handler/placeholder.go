package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindflow-app/mindflow-BE/internal/pkg/middleware"
)

// RegisterPlaceholderBreathing 早期的呼吸接口，不落库，只做回显
func RegisterPlaceholderBreathing(api *gin.RouterGroup) {
	g := api.Group("/placeholder/breathing")

	g.GET("", func(c *gin.Context) {
		if middleware.CurrentUser(c) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "User ID is required"})
			return
		}
		c.JSON(http.StatusOK, []any{})
	})
	g.POST("", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid JSON body"})
			return
		}
		c.JSON(http.StatusOK, body)
	})
	g.PUT("/:id", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid JSON body"})
			return
		}
		if body == nil {
			body = map[string]any{}
		}
		body["id"] = c.Param("id")
		c.JSON(http.StatusOK, body)
	})
	g.DELETE("/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "Session removed"})
	})
}
