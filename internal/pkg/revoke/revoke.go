package revoke

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "listable:revoked:jti:"

// Store 记录已注销的 JWT（按 jti），过期时间与令牌剩余有效期一致。
type Store struct {
	rdb *redis.Client
}

// NewStore 创建吊销存储。rdb 为空时所有操作为空操作。
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Revoke 吊销令牌，ttl 为令牌剩余有效期；已过期的令牌无需记录。
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s == nil || s.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, keyPrefix+hashID(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke set: %w", err)
	}
	return nil
}

// IsRevoked 判断令牌是否已被吊销。
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s == nil || s.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, keyPrefix+hashID(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("revoke exists: %w", err)
	}
	return n > 0, nil
}

func hashID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}
