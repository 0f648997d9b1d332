package config

import "errors"

// 预定义错误常量.
var (
	// ErrFileNotFound 配置文件不存在.
	ErrFileNotFound = errors.New("config: file not found")

	// ErrReadConfig 读取配置失败.
	ErrReadConfig = errors.New("config: failed to read config")

	// ErrUnmarshal 解析配置失败.
	ErrUnmarshal = errors.New("config: failed to unmarshal config")

	// ErrValidation 配置验证失败.
	ErrValidation = errors.New("config: validation failed")
)
