package util

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindflow-app/mindflow-BE/internal/pkg/config"
)

type Claims struct {
	UserID  string `json:"vid"`
	Role    string `json:"role"`
	IsGuest bool   `json:"is_guest"`
	jwt.RegisteredClaims
}

// GenerateToken 生成Token
func GenerateToken(userID string, isGuest bool) (string, error) {
	now := time.Now()
	role := "user"
	if isGuest {
		role = "guest"
	}
	claims := &Claims{
		UserID:  userID,
		Role:    role,
		IsGuest: isGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Cfg.JWTExpire)), // Token过期时间
			IssuedAt:  jwt.NewNumericDate(now),                           // Token签发时间
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // HS256 对称签名
	return token.SignedString([]byte(config.Cfg.JWTSecret))
}

// ParseToken 验证 Token 的签名并提取自定义声明
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("无效的token")
	}
	return claims, nil
}

// ExtractToken 从 Authorization 头中取出 Bearer 后面的 token
func ExtractToken(authHeader string) string {
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
