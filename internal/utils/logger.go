package utils

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	loggerContextKey = "logger"
	requestIDHeader  = "X-Request-ID"
)

// Logger defines a unified logging interface that can be used across handlers and services
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger

	LogRequest(method, path string, statusCode int, duration time.Duration, args ...any)
	LogError(err error, msg string, args ...any)

	Slog() *slog.Logger
}

// SlogLogger implements Logger interface using slog
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) Logger {
	return &SlogLogger{
		logger: logger,
	}
}

// NewLogger returns a JSON logger for production and a text logger at debug level otherwise.
func NewLogger(environment string) Logger {
	if environment == "production" {
		return NewDefaultLogger()
	}
	return NewDevelopmentLogger()
}

func NewDefaultLogger() Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return NewSlogLogger(logger)
}

func NewDevelopmentLogger() Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return NewSlogLogger(logger)
}

// NewNopLogger discards everything. Useful in tests.
func NewNopLogger() Logger {
	return NewSlogLogger(slog.New(slog.DiscardHandler))
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *SlogLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

func (l *SlogLogger) WithGroup(name string) Logger {
	return &SlogLogger{logger: l.logger.WithGroup(name)}
}

func (l *SlogLogger) LogRequest(method, path string, statusCode int, duration time.Duration, args ...any) {
	level := slog.LevelInfo
	if statusCode >= 400 {
		level = slog.LevelWarn
	}
	if statusCode >= 500 {
		level = slog.LevelError
	}

	allArgs := append([]any{
		"method", method,
		"path", path,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	}, args...)
	l.logger.Log(context.Background(), level, "HTTP Request", allArgs...)
}

func (l *SlogLogger) LogError(err error, msg string, args ...any) {
	allArgs := append([]any{"error", err}, args...)
	l.logger.Error(msg, allArgs...)
}

// Slog returns the underlying slog.Logger for packages that take one directly
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

// LoggerMiddleware logs one line per request through logger instead of gin's default writer.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		logger.LogRequest(
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"request_id", c.GetHeader(requestIDHeader),
		)
	}
}

// ContextLogger stores a request-scoped logger in the gin context
func ContextLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestLogger := logger.With(
			"request_id", c.GetHeader(requestIDHeader),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		c.Set(loggerContextKey, requestLogger)
		c.Next()
	}
}

// GetLoggerFromContext retrieves the request logger, falling back to a default one
func GetLoggerFromContext(c *gin.Context) Logger {
	if logger, exists := c.Get(loggerContextKey); exists {
		if typedLogger, ok := logger.(Logger); ok {
			return typedLogger
		}
	}
	return NewDefaultLogger()
}
