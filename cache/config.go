package cache

import "time"

// 默认配置值.
const (
	DefaultPoolSize        = 10
	DefaultTimeout         = 5 * time.Second
	DefaultReadTimeout     = 3 * time.Second
	DefaultWriteTimeout    = 3 * time.Second
	DefaultMaxRetries      = 3
	DefaultCleanupInterval = time.Minute
	DefaultMaxSize         = 10000
)

// Config 缓存配置.
type Config struct {
	// Type 缓存类型：redis / memory.
	Type string `json:"type" yaml:"type" mapstructure:"type"`

	// Addr Redis 地址（host:port）.
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Password Redis 密码.
	Password string `json:"password" yaml:"password" mapstructure:"password"`

	// DB Redis 数据库编号.
	DB int `json:"db" yaml:"db" mapstructure:"db"`

	// PoolSize 连接池大小.
	PoolSize int `json:"pool_size" yaml:"pool_size" mapstructure:"pool_size"`

	// Timeout 连接超时.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// ReadTimeout 读超时.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout 写超时.
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// MaxRetries 最大重试次数.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// CleanupInterval 内存缓存过期清理间隔.
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" mapstructure:"cleanup_interval"`

	// MaxSize 内存缓存最大条目数.
	MaxSize int `json:"max_size" yaml:"max_size" mapstructure:"max_size"`
}

// NewMemoryConfig 创建内存缓存配置.
func NewMemoryConfig() *Config {
	return &Config{Type: TypeMemory}
}

// NewRedisConfig 创建 Redis 缓存配置.
func NewRedisConfig(addr string) *Config {
	return &Config{Type: TypeRedis, Addr: addr}
}

// Validate 校验配置.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	switch c.Type {
	case TypeMemory:
		return nil
	case TypeRedis:
		if c.Addr == "" {
			return ErrEmptyAddr
		}
		return nil
	default:
		return ErrUnsupported
	}
}

// ApplyDefaults 填充缺省值.
func (c *Config) ApplyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
}
