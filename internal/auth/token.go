package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 访问令牌声明
type Claims struct {
	Sub               string   `json:"sub"`
	PreferredUsername string   `json:"preferred_username"`
	Roles             []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenValidator 访问令牌验证器
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator 创建令牌验证器
// secret 为空表示未启用令牌认证,调用方退回开发模式的请求头取值
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// Enabled 是否启用了令牌认证
func (v *TokenValidator) Enabled() bool {
	return len(v.secret) > 0
}

// ValidateToken 验证访问令牌并返回声明
func (v *TokenValidator) ValidateToken(tokenString string) (*Claims, error) {
	if !v.Enabled() {
		return nil, errors.New("token validation is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Sub == "" {
		return nil, errors.New("token missing subject")
	}
	return claims, nil
}

// ActorMiddleware 操作人提取中间件
// 启用令牌认证时从 Bearer token 解析操作人;
// 未启用时信任 X-Actor-ID 请求头,仅用于开发和测试环境
func ActorMiddleware(validator *TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator != nil && validator.Enabled() {
			header := c.GetHeader("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":    http.StatusUnauthorized,
					"message": "missing bearer token",
				})
				return
			}
			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":    http.StatusUnauthorized,
					"message": "invalid token",
				})
				return
			}
			c.Set("actor_id", claims.Sub)
			c.Set("actor_roles", claims.Roles)
			injectActor(c, claims.Sub)
			c.Next()
			return
		}

		actor := c.GetHeader("X-Actor-ID")
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "missing actor identity",
			})
			return
		}
		c.Set("actor_id", actor)
		injectActor(c, actor)
		c.Next()
	}
}

// injectActor 把操作人写进请求 context,服务层审计日志从这里取值
func injectActor(c *gin.Context, actorID string) {
	ctx := context.WithValue(c.Request.Context(), "actor_id", actorID)
	c.Request = c.Request.WithContext(ctx)
}

// ActorID 从请求上下文取操作人 ID
func ActorID(c *gin.Context) string {
	return c.GetString("actor_id")
}
