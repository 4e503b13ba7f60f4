package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 PDFSEARCH_OCR_DPI=300
const EnvPrefix = "PDFSEARCH"

// Config 应用程序配置结构体
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Search SearchConfig `mapstructure:"search"`
	OCR    OCRConfig    `mapstructure:"ocr"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host        string   `mapstructure:"host"`                            // 服务器主机
	Port        int      `mapstructure:"port" validate:"min=1,max=65535"` // 服务器端口
	RateLimit   float64  `mapstructure:"rate_limit" validate:"min=0"`     // 每秒允许的搜索请求数，0 表示不限制
	RateBurst   int      `mapstructure:"rate_burst" validate:"min=0"`     // 突发请求数
	CORSOrigins []string `mapstructure:"cors_origins"`                    // 允许的跨域来源
	Timeout     int      `mapstructure:"search_timeout" validate:"min=0"` // 单次搜索超时（秒），0 表示不限制
	SearchRoot  string   `mapstructure:"search_root"`                     // 允许搜索的根目录，为空时不限制
}

// SearchConfig 搜索配置
type SearchConfig struct {
	Mode          string `mapstructure:"mode" validate:"oneof=document page"`                   // 提取粒度
	MatchPolicy   string `mapstructure:"match_policy" validate:"oneof=substring word_boundary"` // 匹配策略
	ExcerptLength int    `mapstructure:"excerpt_length" validate:"min=1"`                       // 摘录长度
	PreviewLength int    `mapstructure:"preview_length" validate:"min=1"`                       // 诊断预览长度
	Workers       int    `mapstructure:"workers" validate:"min=1,max=64"`                       // 并发处理的文档数
}

// OCRConfig OCR配置
type OCRConfig struct {
	Enable               bool   `mapstructure:"enable"`                                                       // 是否对扫描件执行OCR
	Rasterizer           string `mapstructure:"rasterizer" validate:"oneof=pdftoppm pdfcpu"`                  // 光栅化方式
	PdftoppmPath         string `mapstructure:"pdftoppm_path"`                                                // pdftoppm 可执行文件
	DPI                  int    `mapstructure:"dpi" validate:"min=72,max=1200"`                               // 光栅化分辨率
	Language             string `mapstructure:"language" validate:"required"`                                 // 语言模型，多个用+连接
	PageSegmentationMode int    `mapstructure:"page_segmentation_mode" validate:"min=0,max=13"`               // tesseract --psm
	CharWhitelist        string `mapstructure:"char_whitelist"`                                               // 字符白名单
	Preprocessing        string `mapstructure:"preprocessing" validate:"oneof=none grayscale sharpen median"` // 预处理方式
	MaxDimension         int    `mapstructure:"max_dimension" validate:"min=0"`                               // 图片最长边上限，0 表示不缩放
}

// Languages 返回语言模型列表
func (c OCRConfig) Languages() []string {
	var langs []string
	for _, l := range strings.Split(c.Language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable          bool   `mapstructure:"enable"`                             // 是否启用缓存
	Type            string `mapstructure:"type" validate:"oneof=memory redis"` // 缓存类型：memory 或 redis
	Address         string `mapstructure:"address"`                            // Redis地址
	Password        string `mapstructure:"password"`                           // Redis密码
	DB              int    `mapstructure:"db" validate:"min=0"`                // Redis数据库
	TTL             int    `mapstructure:"ttl" validate:"min=0"`               // 缓存TTL（秒）
	CleanupInterval int    `mapstructure:"cleanup_interval" validate:"min=0"`  // 内存缓存清理间隔（秒）
}

// TTLDuration 缓存TTL
func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"` // 日志级别
	Format     string `mapstructure:"format" validate:"oneof=json text"`            // 输出格式
	File       string `mapstructure:"file"`                                         // 日志文件，空表示只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=0"`                 // 单个文件大小上限
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`                 // 保留的旧文件数量
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`                // 旧文件保留天数
}

// Load 从文件和环境变量加载配置
// configPath 为空或文件不存在时使用默认值
func Load(configPath string) (*Config, error) {
	var config Config

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
			logrus.Debugf("Using config file: %s", v.ConfigFileUsed())
		} else {
			logrus.Warnf("Config file not found at %s, using defaults", configPath)
		}
	}

	// 支持环境变量覆盖
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	processEnvironmentVariables(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// 默认值本身必须合法
		panic(err)
	}
	return cfg
}

// Validate 校验配置取值
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %v", err)
	}
	return nil
}

// processEnvironmentVariables 展开 ${VAR} 形式的取值
func processEnvironmentVariables(cfg *Config) {
	for _, field := range []*string{&cfg.Cache.Password, &cfg.Cache.Address, &cfg.OCR.PdftoppmPath} {
		value := *field
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
				*field = envVal
			}
		}
	}
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 2)
	v.SetDefault("server.rate_burst", 5)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.search_timeout", 600)
	v.SetDefault("server.search_root", "")

	// 搜索默认配置
	v.SetDefault("search.mode", "document")
	v.SetDefault("search.match_policy", "substring")
	v.SetDefault("search.excerpt_length", 500)
	v.SetDefault("search.preview_length", 300)
	v.SetDefault("search.workers", 1)

	// OCR默认配置，与扫描发票的识别参数一致
	v.SetDefault("ocr.enable", true)
	v.SetDefault("ocr.rasterizer", "pdftoppm")
	v.SetDefault("ocr.pdftoppm_path", "pdftoppm")
	v.SetDefault("ocr.dpi", 400)
	v.SetDefault("ocr.language", "por")
	v.SetDefault("ocr.page_segmentation_mode", 7)
	v.SetDefault("ocr.char_whitelist", "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	v.SetDefault("ocr.preprocessing", "sharpen")
	v.SetDefault("ocr.max_dimension", 0)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 3600) // 1小时
	v.SetDefault("cache.cleanup_interval", 600)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
