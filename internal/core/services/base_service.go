package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	"github.com/enkamba/enkamba_payments/internal/middleware"
)

var (
	errUnauthenticated   = fmt.Errorf("%w: caller identity is missing", apperrors.ErrUnauthenticated)
	errCallerMismatch    = fmt.Errorf("%w: you can only move money from your own account", apperrors.ErrForbidden)
	errNonPositiveAmount = fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	errAmountScale       = fmt.Errorf("%w: amount cannot have more than %d decimal places", apperrors.ErrValidation, domain.AmountScale)
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.ErrorContext(ctx, msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).WarnContext(ctx, msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).InfoContext(ctx, msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).DebugContext(ctx, msg, keyvals...)
}

// authorizeCaller checks that the verified caller is acting on their own account.
func authorizeCaller(callerID, targetID string) error {
	if callerID == "" {
		return errUnauthenticated
	}
	if callerID != targetID {
		return errCallerMismatch
	}
	return nil
}
