package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Defaults(t *testing.T) {
	log, err := NewLogger(nil)
	require.NoError(t, err)
	require.NotNil(t, log)

	// 默认配置下各级别方法不应 panic
	assert.NotPanics(t, func() {
		log.Debug("debug message")
		log.Infof("info %s", "message")
		log.Warn("warn message")
		log.Error("error message")
	})
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&Config{Level: "verbose"})
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "level", cfgErr.Field)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(&Config{Format: "xml"})
	require.Error(t, err)
}

func TestNewLogger_JSONFormat(t *testing.T) {
	log, err := NewLogger(&Config{Level: LevelDebug, Format: FormatJSON, ServiceName: "quartzkit"})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		log.With(String("schedule", "EVERY_5_SECONDS"), Int("count", 3)).Info("fired")
	})
}

func TestMustNewLogger_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewLogger(&Config{Level: "bogus"})
	})
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatConsole, cfg.Format)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		LevelDebug: "debug",
		LevelInfo:  "info",
		LevelWarn:  "warn",
		LevelError: "error",
	}
	for level := range cases {
		assert.Equal(t, level, parseLevel(level).String())
	}
	// 未知级别回退到 info
	assert.Equal(t, "info", parseLevel("unknown").String())
}
