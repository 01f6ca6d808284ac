package tools

import (
	"context"
	"fmt"

	"mcp-document-service/internal/models"
)

// Invoke validates raw input against the tool's contract, runs the handler,
// and folds every outcome into one response envelope:
//
//  1. validation failure  -> failure envelope, handler never invoked
//  2. handler result      -> serialized verbatim, isError mirrors !success
//  3. handler panic       -> recovered into a failure envelope
//
// Invoke never panics and never returns an error; every call path
// terminates in a well-formed envelope with exactly one text content part.
func Invoke(ctx context.Context, tool *Tool, raw map[string]interface{}) (envelope models.MCPToolsCallResult) {
	defer func() {
		if rec := recover(); rec != nil {
			envelope = failureEnvelope(fmt.Sprintf("tool %s panicked: %v", tool.Name, rec))
		}
	}()

	validated, verr := tool.Contract.Validate(raw)
	if verr != nil {
		return failureEnvelope(verr.Message)
	}

	result := tool.Handler(ctx, validated)
	return envelopeFor(result)
}

// envelopeFor serializes a Result into the protocol envelope.
func envelopeFor(result Result) models.MCPToolsCallResult {
	return models.MCPToolsCallResult{
		Content: []models.MCPToolContent{
			{Type: "text", Text: result.serialize()},
		},
		IsError: result.IsError(),
	}
}

func failureEnvelope(message string) models.MCPToolsCallResult {
	return envelopeFor(Fail(message))
}
