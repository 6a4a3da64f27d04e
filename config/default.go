package config

import (
	_ "embed"
)

// DefaultTrendWindowDays 月度趋势默认回溯 180 天（约 6 个月）
const DefaultTrendWindowDays = 180

// DefaultConfigYAML 内置默认配置，外部配置文件与环境变量可覆盖
//
//go:embed config.yaml
var DefaultConfigYAML []byte

// SafeErrorMessage 生产环境（release 模式）下隐藏内部错误详情，只返回兜底文案；
// 开发环境返回原始错误便于排查
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
