package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// LogOperation records the outcome of one service call. Expected failures (validation,
// missing resources, auth) are logged below error level.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID string, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err):
			level, status = slog.LevelWarn, "validation_error"
		case IsUnauthorized(err):
			level, status = slog.LevelWarn, "unauthorized"
		case IsNotFound(err):
			level, status = slog.LevelInfo, "not_found"
		case IsConflict(err):
			level, status = slog.LevelWarn, "conflict"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if validationErr, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation, userID string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i == 5 {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
			slog.String("field", err.Field),
			slog.String("message", err.Message),
		))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

// ContextualLogger times one operation and logs its result
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID uint, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, resourceType, time.Since(cl.startTime), err)

	if validationErrors, ok := err.(ValidationErrors); ok {
		cl.logger.LogValidationError(cl.ctx, cl.operation, cl.userID, validationErrors)
	}
}
