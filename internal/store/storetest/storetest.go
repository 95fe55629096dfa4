// Package storetest 提供测试用的内存 SQLite Store。
package storetest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"listable/internal/config"
	"listable/internal/store"
)

var seq atomic.Int64

// NewTestStore 创建一个独立的内存数据库（已迁移），测试结束时自动关闭。
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	s, err := store.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close test store: %v", err)
		}
	})
	return s
}
