package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 基于go-cache的进程内缓存
// 保存OCR后的提取结果和已完成的搜索，服务重启后清空
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache(config Config) (Cache, error) {
	return newMemoryCache(config), nil
}

func newMemoryCache(config Config) *MemoryCache {
	defaults := DefaultConfig()
	ttl := config.DefaultTTL
	if ttl == 0 {
		ttl = defaults.DefaultTTL
	}
	cleanup := config.CleanupInterval
	if cleanup == 0 {
		cleanup = defaults.CleanupInterval
	}
	return &MemoryCache{items: gocache.New(ttl, cleanup)}
}

func (m *MemoryCache) Get(key string) (string, bool, error) {
	value, found := m.items.Get(key)
	if !found {
		return "", false, nil
	}
	s, ok := value.(string)
	return s, ok, nil
}

// Set ttl 为0使用默认过期时间，负数表示永不过期
func (m *MemoryCache) Set(key string, value string, ttl time.Duration) error {
	switch {
	case ttl == 0:
		ttl = gocache.DefaultExpiration
	case ttl < 0:
		ttl = gocache.NoExpiration
	}
	m.items.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Delete(key string) error {
	m.items.Delete(key)
	return nil
}

func (m *MemoryCache) Clear() error {
	m.items.Flush()
	return nil
}

// Len 返回当前条目数（可能包含尚未清理的过期条目）
func (m *MemoryCache) Len() int {
	return m.items.ItemCount()
}

func init() {
	RegisterCache("memory", NewMemoryCache)
}
