package logger

// ConfigError 配置错误.
type ConfigError struct {
	Field   string
	Message string
}

// Error 实现 error 接口.
func (e *ConfigError) Error() string {
	return "logger: invalid config field " + e.Field + ": " + e.Message
}
