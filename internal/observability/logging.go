package observability

import (
	"context"
	"log/slog"
)

func asyncAttrs(operation, kind string, fields map[string]any) []any {
	attrs := []any{
		slog.String("operation", operation),
		slog.String("type", kind),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// LogAsyncOperationStart logs the start of an asynchronous operation.
func LogAsyncOperationStart(ctx context.Context, operation string, fields map[string]any) {
	slog.Default().InfoContext(ctx, "async operation started", asyncAttrs(operation, "async_start", fields)...)
}

// LogAsyncOperationEnd logs the completion of an asynchronous operation.
func LogAsyncOperationEnd(ctx context.Context, operation string, fields map[string]any) {
	slog.Default().InfoContext(ctx, "async operation completed", asyncAttrs(operation, "async_end", fields)...)
}

// LogAsyncOperationError logs an error in an asynchronous operation.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]any) {
	attrs := asyncAttrs(operation, "async_error", fields)
	attrs = append(attrs, slog.String("error", err.Error()))
	slog.Default().ErrorContext(ctx, "async operation failed", attrs...)
}
