// 包 logger：统一初始化与获取日志器，避免各模块重复配置；通过环境变量控制日志级别与输出格式
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// 默认日志器：在进程级复用，避免多处初始化导致输出不一致
var defaultLogger *slog.Logger

// Setup：初始化默认日志器，输出到标准错误
// 背景：标准错误同时承载逐要素诊断行，默认级别为 warn，避免 info 级事件混入诊断流
// 约束：LOG_LEVEL 取 debug/info/warn/error；LOG_FORMAT=json 时输出 JSON
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// SetupWriter：与 Setup 相同，但可指定输出目标（测试中注入缓冲区）
// 约束：设置 LOG_FILE 时日志追加写入该文件，w 只留给诊断行；文件打不开则回退到 w 并记一条 warn
func SetupWriter(w io.Writer) *slog.Logger {
	var openErr error
	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			openErr = err
		} else {
			w = f
		}
	}
	lvl := slog.LevelWarn
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	defaultLogger = slog.New(h)
	if openErr != nil {
		defaultLogger.Warn("log_file_open_error", "path", os.Getenv("LOG_FILE"), "err", openErr)
	}
	return defaultLogger
}

// L：获取默认日志器
// 背景：为业务代码提供快捷访问；若未初始化则回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
