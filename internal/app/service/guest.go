package service

import (
	"fmt"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	util "github.com/mindflow-app/mindflow-BE/pkg/mypubliclib/util"
)

// GuestLogin 游客登录结果
type GuestLogin struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type GuestService struct {
	clock clock.Clock
}

func NewGuestService(c clock.Clock) *GuestService {
	return &GuestService{clock: c}
}

// Login 为游客签发 token；已有 userId 时沿用，否则生成新的
func (s *GuestService) Login(userID string) (*GuestLogin, error) {
	if userID == "" {
		userID = model.NewUserID(s.clock.Now())
	}
	token, err := util.GenerateToken(userID, true)
	if err != nil {
		return nil, fmt.Errorf("issue guest token: %w", err)
	}
	return &GuestLogin{UserID: userID, Token: token}, nil
}
