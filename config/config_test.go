package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "操作失败"
	testErr := errors.New("internal database error")

	// nil err 返回 fallback
	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release 模式返回 fallback，不暴露错误详情
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	// debug 模式返回 err.Error()
	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	// GlobalConfig 为 nil 时返回 err.Error()（视为开发环境）
	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	// 内置默认配置必须可解析且字段齐全
	assert.NotEmpty(t, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Database.DBName)
	assert.Greater(t, cfg.JWT.ExpireHours, 0)
	assert.Equal(t, cfg.JWT.ExpireTime.Hours(), float64(cfg.JWT.ExpireHours))
	assert.Equal(t, DefaultTrendWindowDays, cfg.Report.TrendWindowDays)
}

func TestTrendWindowDays_Fallback(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	// 未初始化配置时返回默认窗口
	GlobalConfig = nil
	assert.Equal(t, DefaultTrendWindowDays, TrendWindowDays())

	// 配置了合法值时生效
	GlobalConfig = &Config{Report: ReportConfig{TrendWindowDays: 90}}
	assert.Equal(t, 90, TrendWindowDays())

	// 非法值回退到默认
	GlobalConfig = &Config{Report: ReportConfig{TrendWindowDays: 0}}
	assert.Equal(t, DefaultTrendWindowDays, TrendWindowDays())
}
