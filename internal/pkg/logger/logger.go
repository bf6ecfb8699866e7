// Package logger 基于 zerolog 的全局日志初始化
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qs3c/coach_go_server/config"
)

// Init 按配置设置全局 logger，返回带 service 字段的实例
func Init(cfg config.LogConfig, service string) zerolog.Logger {
	return New(os.Stdout, cfg, service)
}

// New 输出到指定 writer，测试中使用
func New(w io.Writer, cfg config.LogConfig, service string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(w).With().Timestamp().Str("service", service).Logger()
	log.Logger = l
	return l
}
