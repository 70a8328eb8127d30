// Package logger 提供基于 slog 的结构化日志。
//
// 核心功能:
//   - Init() 配置默认日志器 (JSON/Text)
//   - InitWithFile() 改为写入文件 (替换当前日志器)
//   - FromContext() 上下文感知日志
//   - 包级便捷方法 (Info/Error/Warn/Debug/Fatal)
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	storeLogger(newLogger(false))
}

func newLogger(development bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: development,
	}
	var handler slog.Handler
	if development {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// getLogger 原子读取当前日志器，避免 defaultLogger 并发读写竞争。
func getLogger() *slog.Logger { return loggerPtr.Load() }

// storeLogger 原子替换当前日志器并同步为 slog 包级默认值。
func storeLogger(l *slog.Logger) {
	loggerPtr.Store(l)
	slog.SetDefault(l)
}

// exitFunc 可在测试中替换，拦截 Fatal 的进程退出。
var exitFunc = os.Exit

// Init 初始化日志配置。env: "development"/"dev" 或 "production" (默认)。
func Init(env string) {
	dev := env == "development" || env == "dev"
	storeLogger(newLogger(dev))
}

// ========================================
// 文件输出
// ========================================

var (
	logFile   *os.File
	logFileMu sync.Mutex
)

// InitWithFile 将当前日志器替换为写入 dir/app.log 的 JSON 日志器 (不再写 stdout)。
// 重复调用会关闭上一个文件句柄。
func InitWithFile(dir string) error {
	f, err := os.OpenFile(filepath.Join(dir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	logFileMu.Lock()
	old := logFile
	logFile = f
	logFileMu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})
	storeLogger(slog.New(handler))
	return nil
}

// ShutdownFileHandler 关闭文件日志句柄 (若有)。没有 InitWithFile 也可安全调用。
func ShutdownFileHandler() {
	logFileMu.Lock()
	f := logFile
	logFile = nil
	logFileMu.Unlock()

	if f != nil {
		_ = f.Close()
	}
}

// ========================================
// Context 感知日志
// ========================================

type ctxKey struct{}

// WithContext 将日志器注入 context。
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 从 context 提取日志器，若不存在则返回默认日志器。
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return getLogger()
}

// ========================================
// 包级便捷方法
// ========================================

// Info/Error/Warn/Debug 记录结构化日志。args 为 key-value 对。
func Info(msg string, args ...any)  { getLogger().Info(msg, args...) }
func Error(msg string, args ...any) { getLogger().Error(msg, args...) }
func Warn(msg string, args ...any)  { getLogger().Warn(msg, args...) }
func Debug(msg string, args ...any) { getLogger().Debug(msg, args...) }

// Infof/Errorf/Warnf/Debugf 记录格式化日志。
func Infof(format string, args ...any)  { getLogger().Info(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { getLogger().Error(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { getLogger().Warn(fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...any) { getLogger().Debug(fmt.Sprintf(format, args...)) }

// Fatal 记录致命错误，flush 异步 DB 日志后退出。
func Fatal(msg string, args ...any) {
	getLogger().Error(msg, args...)
	ShutdownDBHandler()
	exitFunc(1)
}

// Infow/Warnw/Errorw/Debugw 等同于 Info/Warn/Error/Debug (兼容别名)。
func Infow(msg string, keysAndValues ...any)  { getLogger().Info(msg, keysAndValues...) }
func Warnw(msg string, keysAndValues ...any)  { getLogger().Warn(msg, keysAndValues...) }
func Errorw(msg string, keysAndValues ...any) { getLogger().Error(msg, keysAndValues...) }
func Debugw(msg string, keysAndValues ...any) { getLogger().Debug(msg, keysAndValues...) }

// With 返回带附加上下文的日志器。
func With(args ...any) *slog.Logger { return getLogger().With(args...) }

// Get 返回底层 slog.Logger。
func Get() *slog.Logger { return getLogger() }

// SetForTest 替换当前日志器并返回替换前的实例，供测试捕获日志输出后复原。
func SetForTest(l *slog.Logger) *slog.Logger {
	prev := getLogger()
	storeLogger(l)
	return prev
}

// Attr 类型别名 (避免调用方直接 import slog)。
type Attr = slog.Attr

// Any 创建任意类型属性。
func Any(key string, value any) Attr { return slog.Any(key, value) }

// unwrapBaseHandler 剥离 MultiHandler 包装，返回其首个 (base) handler。
// 用于 AttachDBHandler 避免重复调用时嵌套出 MultiHandler(MultiHandler(base, db1), db2)。
func unwrapBaseHandler(h slog.Handler) slog.Handler {
	if mh, ok := h.(*MultiHandler); ok && len(mh.handlers) > 0 {
		return mh.handlers[0]
	}
	return h
}

// 预留字段常量 — MUST 使用常量键名，勿硬编码。
const (
	FieldTraceID   = "trace_id"
	FieldAction    = "action"
	FieldComponent = "component"
	FieldModule    = "module"
	FieldError     = "error"
	FieldStatus    = "status"
	FieldLatencyMS = "latency_ms"
	FieldCount     = "count"
	FieldPath      = "path"
	FieldMethod    = "method"
	FieldUserID    = "user_id"
	// v2: 统一日志接入
	FieldSource     = "source"
	FieldEventType  = "event_type"
	FieldToolName   = "tool_name"
	FieldDurationMS = "duration_ms"

	// scenario automation platform fields
	FieldTenantID  = "tenant_id"
	FieldBotID     = "bot_id"
	FieldScenario  = "scenario"
	FieldStepOrder = "step_order"
	FieldQueue     = "queue"
	FieldTaskID    = "task_id"
	FieldCacheKey  = "cache_key"
	FieldTrigger   = "trigger"
	FieldAddr      = "addr"
)

// containsErrorKeyword 判断一行非结构化文本是否含错误关键词 (大小写不敏感)。
// 未导出, 目前仅本包测试调用。
func containsErrorKeyword(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "error") || strings.Contains(lower, "panic") || strings.Contains(lower, "fatal")
}
