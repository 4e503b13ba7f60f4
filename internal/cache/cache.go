package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/pkg/errors"
)

// Cache 字符串键值缓存，值由调用方编码
type Cache interface {
	Get(key string) (value string, found bool, err error)
	Set(key string, value string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Factory 按配置创建缓存
type Factory func(config Config) (Cache, error)

var registry = make(map[string]Factory)

// RegisterCache 注册缓存后端，重复注册时后者生效
func RegisterCache(name string, factory Factory) {
	registry[name] = factory
}

// NewCache 按 Type 创建缓存，Type 为空时使用内存缓存
func NewCache(config Config) (Cache, error) {
	if config.Type == "" {
		config.Type = "memory"
	}
	factory, ok := registry[config.Type]
	if !ok {
		return nil, fmt.Errorf("unknown cache type %q", config.Type)
	}
	return factory(config)
}

// Config 缓存配置
type Config struct {
	Type            string        // memory 或 redis
	RedisAddr       string        // 仅redis使用
	RedisPassword   string        // 仅redis使用
	RedisDB         int           // 仅redis使用
	DefaultTTL      time.Duration // Set 传入0时使用
	CleanupInterval time.Duration // 仅内存缓存使用
}

// DefaultConfig 返回默认缓存配置
// 提取结果与文件修改时间绑定，过期时间只用于控制内存占用
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		DefaultTTL:      time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// GenerateCacheKey 用冒号连接前缀和各部分
func GenerateCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// OCRProfile 影响OCR输出的全部参数
// 配置不同的实例共享redis时，参数不同的OCR结果不会被复用
type OCRProfile struct {
	Rasterizer    string
	DPI           int
	Languages     []string
	PageSegMode   int
	CharWhitelist string
	Preprocessing string
}

// String 以 / 连接各参数，语言以 + 连接
func (p OCRProfile) String() string {
	return strings.Join([]string{
		p.Rasterizer,
		strconv.Itoa(p.DPI),
		strings.Join(p.Languages, "+"),
		strconv.Itoa(p.PageSegMode),
		p.CharWhitelist,
		p.Preprocessing,
	}, "/")
}

// ExtractionKey 文档提取结果的缓存键
// 文件大小或修改时间变化后键随之变化，旧条目自然失效
func ExtractionKey(doc models.Document, mode string, profile OCRProfile) string {
	return GenerateCacheKey("extract",
		doc.Path,
		strconv.FormatInt(doc.Size, 10),
		strconv.FormatInt(doc.ModTime.UnixNano(), 10),
		mode,
		profile.String(),
	)
}

// SearchKey 已完成搜索结果的缓存键
func SearchKey(id string) string {
	return GenerateCacheKey("search", id)
}

// GetJSON 读取并反序列化缓存值
func GetJSON(c Cache, key string, v interface{}) (bool, error) {
	raw, found, err := c.Get(key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		// 损坏的条目直接丢弃
		_ = c.Delete(key)
		return false, errors.Wrapf(err, "decode cache entry %s", key)
	}
	return true, nil
}

// SetJSON 序列化后写入缓存
func SetJSON(c Cache, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode cache entry %s", key)
	}
	return c.Set(key, string(data), ttl)
}
