package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestStructuredErrorMessage(t *testing.T) {
	err := NewDocumentError(ErrCodeMalformedDocument, "cannot parse document", nil)

	msg := err.Error()
	if !strings.Contains(msg, string(ErrorCategoryDocument)) {
		t.Errorf("Error() = %q, expected category %q", msg, ErrorCategoryDocument)
	}
	if !strings.Contains(msg, ErrCodeMalformedDocument) {
		t.Errorf("Error() = %q, expected code %q", msg, ErrCodeMalformedDocument)
	}

	withDetails := err.WithDetails("page 3 is truncated")
	if !strings.Contains(withDetails.Error(), "page 3 is truncated") {
		t.Errorf("Error() should include details, got %q", withDetails.Error())
	}
}

func TestStructuredErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := NewSystemError(ErrCodeUnexpectedPanic, "something broke", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestToMCPErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		wantCode int
	}{
		{"validation maps to invalid params", NewValidationError(ErrCodeInvalidParams, "bad input", nil), -32602},
		{"mcp maps to invalid request", NewMCPError(ErrCodeInvalidRequest, "bad request", nil), -32600},
		{"document maps to internal", NewDocumentError(ErrCodeFileNotFound, "missing", nil), -32603},
		{"session maps to internal", NewSessionError(ErrCodeSessionNotFound, "gone", nil), -32603},
		{"system maps to internal", NewSystemError(ErrCodeInitializationFailed, "boom", nil), -32603},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mcpErr := tt.err.ToMCPError()
			if mcpErr.Code != tt.wantCode {
				t.Errorf("ToMCPError().Code = %d, want %d", mcpErr.Code, tt.wantCode)
			}
			if mcpErr.Message != tt.err.Message {
				t.Errorf("ToMCPError().Message = %q, want %q", mcpErr.Message, tt.err.Message)
			}
		})
	}
}

func TestRecoverability(t *testing.T) {
	if NewSystemError(ErrCodeUnexpectedPanic, "fatal", nil).IsRecoverable() {
		t.Error("critical errors should not be recoverable")
	}
	if !NewValidationError(ErrCodeMissingField, "missing", nil).IsRecoverable() {
		t.Error("validation errors should be recoverable")
	}
}

func TestWithContext(t *testing.T) {
	err := NewSessionError(ErrCodeSessionNotFound, "no session", nil).
		WithContext("session_id", "abc-123")

	if err.Context["session_id"] != "abc-123" {
		t.Errorf("Context[session_id] = %v, want abc-123", err.Context["session_id"])
	}

	data, ok := err.ToMCPError().Data.(map[string]interface{})
	if !ok {
		t.Fatal("ToMCPError().Data should be a map")
	}
	if data["code"] != ErrCodeSessionNotFound {
		t.Errorf("Data[code] = %v, want %v", data["code"], ErrCodeSessionNotFound)
	}
}
