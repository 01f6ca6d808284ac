// Package logging provides structured JSON logging for the document service.
//
// All log output goes to stderr. Stdout carries JSON-RPC protocol frames on
// the stdio transport, so a single stray log line there would corrupt the
// framing; the handler is therefore bound to stderr unconditionally.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"mcp-document-service/pkg/errors"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogContext represents contextual information for log entries
type LogContext map[string]interface{}

// StructuredLogger provides structured logging capabilities
type StructuredLogger struct {
	logger    *slog.Logger
	component string
	context   LogContext
}

// newHandler builds the JSON handler shared by all loggers.
func newHandler(w io.Writer, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(time.Now().UTC().Format(time.RFC3339Nano)),
				}
			}
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			return a
		},
	}
	return slog.NewJSONHandler(w, opts)
}

// NewStructuredLogger creates a new structured logger writing to stderr
func NewStructuredLogger(component string) *StructuredLogger {
	return NewStructuredLoggerWithWriter(component, os.Stderr, slog.LevelDebug)
}

// NewStructuredLoggerWithWriter creates a logger with a custom writer and
// level. Used by the manager (shared level var) and by tests.
func NewStructuredLoggerWithWriter(component string, w io.Writer, level slog.Leveler) *StructuredLogger {
	return &StructuredLogger{
		logger:    slog.New(newHandler(w, level)),
		component: component,
		context:   make(LogContext),
	}
}

// WithContext adds context to the logger (returns a new logger instance)
func (sl *StructuredLogger) WithContext(key string, value interface{}) *StructuredLogger {
	newLogger := &StructuredLogger{
		logger:    sl.logger,
		component: sl.component,
		context:   make(LogContext, len(sl.context)+1),
	}
	for k, v := range sl.context {
		newLogger.context[k] = v
	}
	newLogger.context[key] = value
	return newLogger
}

// WithError adds error information to the logger context
func (sl *StructuredLogger) WithError(err error) *StructuredLogger {
	if err == nil {
		return sl
	}

	newLogger := sl.WithContext("error", err.Error())

	// Add structured error information if available
	if structuredErr, ok := err.(*errors.StructuredError); ok {
		newLogger = newLogger.
			WithContext("error_category", structuredErr.Category).
			WithContext("error_code", structuredErr.Code).
			WithContext("error_severity", structuredErr.Severity)
	}

	return newLogger
}

// buildLogAttributes creates slog attributes from context
func (sl *StructuredLogger) buildLogAttributes() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("component", sl.component),
	}
	for key, value := range sl.context {
		attrs = append(attrs, slog.Any(key, value))
	}
	return attrs
}

// Debug logs a debug message
func (sl *StructuredLogger) Debug(message string) {
	sl.logger.LogAttrs(context.Background(), slog.LevelDebug, message, sl.buildLogAttributes()...)
}

// Info logs an info message
func (sl *StructuredLogger) Info(message string) {
	sl.logger.LogAttrs(context.Background(), slog.LevelInfo, message, sl.buildLogAttributes()...)
}

// Warn logs a warning message
func (sl *StructuredLogger) Warn(message string) {
	sl.logger.LogAttrs(context.Background(), slog.LevelWarn, message, sl.buildLogAttributes()...)
}

// Error logs an error message
func (sl *StructuredLogger) Error(message string) {
	sl.logger.LogAttrs(context.Background(), slog.LevelError, message, sl.buildLogAttributes()...)
}

// LogMCPMessage logs an MCP protocol message with timing information
func (sl *StructuredLogger) LogMCPMessage(method string, requestID interface{}, duration time.Duration, success bool) {
	logger := sl.WithContext("mcp_method", method).
		WithContext("request_id", requestID).
		WithContext("duration_ms", duration.Milliseconds()).
		WithContext("success", success)

	if success {
		logger.Info("MCP message processed successfully")
	} else {
		logger.Warn("MCP message processing failed")
	}
}

// LogToolInvocation logs one tool call through the registry
func (sl *StructuredLogger) LogToolInvocation(tool string, duration time.Duration, isError bool) {
	logger := sl.WithContext("tool", tool).
		WithContext("duration_ms", duration.Milliseconds()).
		WithContext("is_error", isError)

	if isError {
		logger.Warn("Tool invocation returned an error result")
	} else {
		logger.Info("Tool invocation completed")
	}
}

// LogFileSystemEvent logs output directory monitoring events
func (sl *StructuredLogger) LogFileSystemEvent(eventType string, path string) {
	sl.WithContext("fs_event_type", eventType).
		WithContext("fs_path", path).
		Debug("File system event detected")
}

// LogSessionEvent logs session lifecycle transitions
func (sl *StructuredLogger) LogSessionEvent(event string, sessionID string, openSessions int) {
	sl.WithContext("session_event", event).
		WithContext("session_id", sessionID).
		WithContext("open_sessions", openSessions).
		Info("Session lifecycle event")
}

// LogStartup logs application startup events
func (sl *StructuredLogger) LogStartup(event string, details map[string]interface{}) {
	logger := sl.WithContext("startup_event", event)
	for k, v := range details {
		logger = logger.WithContext(k, v)
	}
	logger.Info("Application startup event")
}

// LogShutdown logs application shutdown events
func (sl *StructuredLogger) LogShutdown(event string, details map[string]interface{}) {
	logger := sl.WithContext("shutdown_event", event)
	for k, v := range details {
		logger = logger.WithContext(k, v)
	}
	logger.Info("Application shutdown event")
}

// TruncateForLog shortens long argument values so document content does not
// flood the diagnostic channel.
func TruncateForLog(value string) string {
	const maxLogLength = 100
	if len(value) <= maxLogLength {
		return value
	}
	return fmt.Sprintf("%s... [%d chars]", value[:maxLogLength], len(value))
}
