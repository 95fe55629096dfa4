package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// gin 上下文中的身份相关键。
const (
	ContextUserID      = "userID"
	ContextTokenID     = "jti"
	ContextTokenExpiry = "tokenExpiry"
)

// Claims 为签发与校验共用的 JWT 声明，sub 为用户 ID，jti 用于注销。
type Claims struct {
	jwt.RegisteredClaims
}

// Revoker 查询令牌是否已注销。
type Revoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware 校验 JWT 并将 userID、jti 与过期时间写入上下文。
//
// revoker 为空时不检查注销状态；查询吊销存储失败时记录告警并放行。
func AuthMiddleware(jwtSecret string, revoker Revoker, logger *slog.Logger) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		uid, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || uid == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		if revoker != nil && claims.ID != "" {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				if logger != nil {
					logger.Warn("revocation check failed", slog.String("error", err.Error()))
				}
			} else if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		c.Set(ContextUserID, uint(uid))
		c.Set(ContextTokenID, claims.ID)
		var expiry time.Time
		if claims.ExpiresAt != nil {
			expiry = claims.ExpiresAt.Time
		}
		c.Set(ContextTokenExpiry, expiry)
		c.Next()
	}
}

// UserID 返回中间件写入的用户 ID，未认证时为 0。
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}
