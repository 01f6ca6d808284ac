// Package tools binds named document operations to typed input contracts
// and normalizes their results into the MCP response envelope.
package tools

import (
	"context"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/schema"
)

// Handler executes one tool call. It receives the validated, fully-defaulted
// input and returns a Result. Expected failures (bad path, malformed
// content, unreachable provider) must be reported through Fail, not by
// panicking; the adapter still recovers panics as a last resort.
type Handler func(ctx context.Context, args map[string]interface{}) Result

// Tool describes one registered operation: a unique name, a human-readable
// description, the input contract, and the handler. Tools are created once
// at startup and immutable thereafter.
type Tool struct {
	Name        string
	Description string
	Contract    *schema.Contract
	Handler     Handler
}

// Definition returns the MCP protocol view of the tool, with the input
// schema derived from the same contract the validator uses.
func (t *Tool) Definition() models.MCPTool {
	return models.MCPTool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.Contract.JSONSchema(),
	}
}
