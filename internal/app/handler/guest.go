package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindflow-app/mindflow-BE/internal/app/service"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/middleware"
)

type GuestHandler struct {
	svc *service.GuestService
	log *logger.Logger
}

func NewGuestHandler(svc *service.GuestService, log *logger.Logger) *GuestHandler {
	return &GuestHandler{svc: svc, log: log}
}

// GuestLogin POST /api/guest-login
// 带了 userId 就沿用（本地已有数据的用户），否则新建一个
func (h *GuestHandler) GuestLogin(c *gin.Context) {
	resp, err := h.svc.Login(middleware.CurrentUser(c))
	if err != nil {
		h.log.Error("guest login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
		return
	}
	middleware.SetUserCookie(c, resp.UserID)
	c.JSON(http.StatusOK, resp)
}
