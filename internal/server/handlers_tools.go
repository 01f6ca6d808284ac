package server

import (
	"context"
	"encoding/json"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/errors"
)

// handleToolsList handles the tools/list method
func (s *MCPServer) handleToolsList(message *models.MCPMessage) *models.MCPMessage {
	result := models.MCPToolsListResult{
		Tools: s.registry.List(),
	}

	return &models.MCPMessage{
		JSONRPC: "2.0",
		ID:      message.ID,
		Result:  result,
	}
}

// handleToolsCall handles the tools/call method. Tool failures come
// back as isError result envelopes; only malformed requests produce
// protocol errors.
func (s *MCPServer) handleToolsCall(message *models.MCPMessage) *models.MCPMessage {
	var params models.MCPToolsCallParams
	if message.Params != nil {
		paramsBytes, err := json.Marshal(message.Params)
		if err != nil {
			return s.createErrorResponse(message.ID, -32602, "Invalid parameters")
		}
		if err := json.Unmarshal(paramsBytes, &params); err != nil {
			return s.createErrorResponse(message.ID, -32602, "Invalid parameters format")
		}
	}

	if params.Name == "" {
		structuredErr := errors.NewValidationError(errors.ErrCodeInvalidParams,
			"Missing required parameter: name", nil)
		return s.createStructuredErrorResponse(message.ID, structuredErr)
	}

	envelope := s.registry.Dispatch(context.Background(), params.Name, params.Arguments)

	return &models.MCPMessage{
		JSONRPC: "2.0",
		ID:      message.ID,
		Result:  envelope,
	}
}
