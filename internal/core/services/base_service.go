package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/billing_dashboard/internal/middleware"
	"github.com/SscSPs/billing_dashboard/internal/notify"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Notifier notify.Notifier
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.ErrorContext(ctx, msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).InfoContext(ctx, msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).DebugContext(ctx, msg, keyvals...)
}

// Notify publishes a notice. Delivery failures are logged and never change
// the outcome of the operation that produced the notice.
func (s *BaseService) Notify(ctx context.Context, kind notify.Kind, level notify.Level, userEmail, message string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, notify.NewNotice(kind, level, userEmail, message)); err != nil {
		s.LogError(ctx, err, "Failed to deliver notice",
			slog.String("kind", string(kind)),
			slog.String("user_email", userEmail))
	}
}
