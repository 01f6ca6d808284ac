package server

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/errors"
)

// protocolVersion is the MCP protocol revision this server speaks.
const protocolVersion = "2024-11-05"

// resourceURIPrefix namespaces generated documents in resources/list.
const resourceURIPrefix = "document://"

// handleInitialize handles the MCP initialize method
func (s *MCPServer) handleInitialize(message *models.MCPMessage) *models.MCPMessage {
	result := models.MCPInitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    s.capabilities,
		ServerInfo:      s.serverInfo,
	}

	return &models.MCPMessage{
		JSONRPC: "2.0",
		ID:      message.ID,
		Result:  result,
	}
}

// handleInitialized handles the notifications/initialized method
func (s *MCPServer) handleInitialized(message *models.MCPMessage) *models.MCPMessage {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	s.logger.Info("MCP client handshake completed")
	return nil // No response for notifications
}

// handleResourcesList lists every generated document known to the
// inventory as an MCP resource.
func (s *MCPServer) handleResourcesList(message *models.MCPMessage) *models.MCPMessage {
	documents := s.inventory.Snapshot()

	resources := make([]models.MCPResource, 0, len(documents))
	for _, doc := range documents {
		resources = append(resources, models.MCPResource{
			URI:         resourceURIPrefix + doc.Path,
			Name:        doc.Name,
			Description: "Generated " + strings.ToUpper(doc.Format) + " document",
			MimeType:    models.MimeTypeForFormat(doc.Format),
		})
	}

	return &models.MCPMessage{
		JSONRPC: "2.0",
		ID:      message.ID,
		Result:  models.MCPResourcesListResult{Resources: resources},
	}
}

// handleResourcesRead returns the raw bytes of one generated document,
// base64-encoded as an MCP blob.
func (s *MCPServer) handleResourcesRead(message *models.MCPMessage) *models.MCPMessage {
	var params models.MCPResourcesReadParams
	if message.Params != nil {
		paramsBytes, err := json.Marshal(message.Params)
		if err != nil {
			return s.createErrorResponse(message.ID, -32602, "Invalid parameters")
		}
		if err := json.Unmarshal(paramsBytes, &params); err != nil {
			return s.createErrorResponse(message.ID, -32602, "Invalid parameters format")
		}
	}
	if params.URI == "" {
		structuredErr := errors.NewValidationError(errors.ErrCodeInvalidParams,
			"Missing required parameter: uri", nil)
		return s.createStructuredErrorResponse(message.ID, structuredErr)
	}
	if !strings.HasPrefix(params.URI, resourceURIPrefix) {
		structuredErr := errors.NewMCPError(errors.ErrCodeResourceNotFound,
			"Unknown resource URI scheme", nil)
		return s.createStructuredErrorResponse(message.ID, structuredErr)
	}

	path := strings.TrimPrefix(params.URI, resourceURIPrefix)
	doc, ok := s.inventory.Get(path)
	if !ok {
		structuredErr := errors.NewMCPError(errors.ErrCodeResourceNotFound,
			"Resource not found: "+params.URI, nil)
		return s.createStructuredErrorResponse(message.ID, structuredErr)
	}

	content, err := os.ReadFile(doc.Path)
	if err != nil {
		structuredErr := errors.NewDocumentError(errors.ErrCodeFileNotFound,
			"Failed to read document: "+doc.Path, err)
		return s.createStructuredErrorResponse(message.ID, structuredErr)
	}

	return &models.MCPMessage{
		JSONRPC: "2.0",
		ID:      message.ID,
		Result: models.MCPResourcesReadResult{
			Contents: []models.MCPResourceContent{
				{
					URI:      params.URI,
					MimeType: models.MimeTypeForFormat(doc.Format),
					Blob:     base64.StdEncoding.EncodeToString(content),
				},
			},
		},
	}
}
