package clog

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
)

type Level int

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

func HTTPStatusToLevel(status int) Level {
	switch {
	case status >= 100 && status < 400:
		return LevelInfo
	case status == 499:
		return LevelInfo
	case status >= 400 && status < 500:
		return LevelWarn
	case status >= 500:
		return LevelError
	default:
		return LevelError
	}
}

// ConnectCodeToLevel decides how loudly a rejected transition is logged.
// Client-caused rejections (validation, authorization, conflicts, timing)
// are routine in a permissionless ledger and stay at Info.
func ConnectCodeToLevel(code connect.Code) Level {
	switch code {
	case connect.CodeCanceled,
		connect.CodeInvalidArgument,
		connect.CodeDeadlineExceeded,
		connect.CodeNotFound,
		connect.CodeAlreadyExists,
		connect.CodePermissionDenied,
		connect.CodeFailedPrecondition,
		connect.CodeAborted,
		connect.CodeOutOfRange,
		connect.CodeUnauthenticated:
		return LevelInfo
	case connect.CodeUnknown,
		connect.CodeResourceExhausted,
		connect.CodeUnimplemented,
		connect.CodeInternal,
		connect.CodeUnavailable,
		connect.CodeDataLoss:
		return LevelError
	}
	return LevelError
}

// Log emits msg at the given level through the default logger.
func Log(ctx context.Context, level Level, msg string, args ...any) {
	switch level {
	case LevelError:
		slog.ErrorContext(ctx, msg, args...)
	case LevelWarn:
		slog.WarnContext(ctx, msg, args...)
	case LevelInfo:
		slog.InfoContext(ctx, msg, args...)
	case LevelDebug:
		slog.DebugContext(ctx, msg, args...)
	}
}
