package logger

// Config 日志配置.
type Config struct {
	// Level 日志级别: debug, info, warn, error, fatal.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format 输出格式: json, console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// ServiceName 服务名称，作为固定字段附加到每条日志.
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`

	// EnableCaller 是否记录调用位置.
	EnableCaller bool `json:"enable_caller" yaml:"enable_caller" mapstructure:"enable_caller"`

	// CallerSkip 调用栈跳过层数.
	CallerSkip int `json:"caller_skip" yaml:"caller_skip" mapstructure:"caller_skip"`
}

// DefaultConfig 返回默认配置.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Format: FormatConsole,
	}
}

// Validate 验证配置.
func (c *Config) Validate() error {
	switch c.Level {
	case "", LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
	default:
		return &ConfigError{Field: "level", Message: "unsupported log level: " + c.Level}
	}

	switch c.Format {
	case "", FormatJSON, FormatConsole:
	default:
		return &ConfigError{Field: "format", Message: "unsupported log format: " + c.Format}
	}

	return nil
}

// ApplyDefaults 填充缺省值.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
}
