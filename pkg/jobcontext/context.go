package jobcontext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var (
	keyRunID     KeyContext = "run_id"
	keyCallID    KeyContext = "call_id"
	keyStartTime KeyContext = "run_start_time"
)

// Begin tags ctx with a fresh run ID, the call being processed and the
// start time
func Begin(parentCtx context.Context, callID string) context.Context {
	ctx := context.WithValue(parentCtx, keyRunID, uuid.New())
	ctx = context.WithValue(ctx, keyCallID, callID)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())
	return ctx
}

// Safe runs fn and converts a panic into an error.
// Used for stages whose failure must not take the whole run down.
func Safe(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before stage execution: %w", ctx.Err())
	}

	return fn(ctx)
}

// GetRunID extracts run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetCallID extracts call ID from context
func GetCallID(ctx context.Context) (string, bool) {
	callID, ok := ctx.Value(keyCallID).(string)
	return callID, ok
}

// GetStartTime extracts run start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	return startTime, ok
}

// Elapsed returns the time since Begin, or 0 when ctx was not started with Begin
func Elapsed(ctx context.Context) time.Duration {
	start, ok := GetStartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// Fields returns zap fields describing the run, for log correlation
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if runID, ok := GetRunID(ctx); ok {
		fields = append(fields, zap.String("run_id", runID.String()))
	}
	if callID, ok := GetCallID(ctx); ok {
		fields = append(fields, zap.String("call_id", callID))
	}
	return fields
}

// IsRetryableError checks if an error from an external engine should
// trigger a retry: network errors, timeouts, rate limits and 5xx responses
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "status 429") {
		return true
	}

	// Server errors (5xx), including model cold starts
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "currently loading") {
		return true
	}

	return false
}
