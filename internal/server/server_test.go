package server

import (
	"encoding/json"
	"testing"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/config"
)

func newTestServer(t *testing.T) *MCPServer {
	t.Helper()
	cfg := config.Default()
	cfg.Server.LogLevel = "ERROR"
	cfg.Documents.OutputDir = t.TempDir()

	srv, err := NewMCPServer(cfg)
	if err != nil {
		t.Fatalf("NewMCPServer failed: %v", err)
	}
	t.Cleanup(func() {
		if srv.monitor != nil {
			srv.monitor.StopWatching()
		}
	})
	return srv
}

func request(id interface{}, method string, params interface{}) *models.MCPMessage {
	return &models.MCPMessage{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

func TestHandleInitialize(t *testing.T) {
	srv := newTestServer(t)

	response := srv.HandleMessage(request(1, "initialize", map[string]interface{}{
		"protocolVersion": protocolVersion,
		"clientInfo":      map[string]string{"name": "test-client", "version": "0.1.0"},
	}))

	if response == nil || response.Error != nil {
		t.Fatalf("unexpected response: %+v", response)
	}
	result, ok := response.Result.(models.MCPInitializeResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", response.Result)
	}
	if result.ProtocolVersion != protocolVersion {
		t.Errorf("unexpected protocol version: %s", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != config.ServiceName {
		t.Errorf("unexpected server name: %s", result.ServerInfo.Name)
	}
	if result.Capabilities.Tools == nil || result.Capabilities.Resources == nil {
		t.Error("tools and resources capabilities should be advertised")
	}
}

func TestHandleInitializedNotification(t *testing.T) {
	srv := newTestServer(t)

	if response := srv.HandleMessage(request(nil, "notifications/initialized", nil)); response != nil {
		t.Errorf("notification produced a response: %+v", response)
	}
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	if !srv.initialized {
		t.Error("initialized flag not set")
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	srv := newTestServer(t)

	response := srv.HandleMessage(request(7, "bogus/method", nil))
	if response == nil || response.Error == nil {
		t.Fatal("expected error response")
	}
	if response.Error.Code != -32601 {
		t.Errorf("expected -32601, got %d", response.Error.Code)
	}
	if response.ID != 7 {
		t.Errorf("response ID %v does not match request", response.ID)
	}
}

func TestHandleToolsList(t *testing.T) {
	srv := newTestServer(t)

	response := srv.HandleMessage(request(2, "tools/list", nil))
	if response == nil || response.Error != nil {
		t.Fatalf("unexpected response: %+v", response)
	}
	result, ok := response.Result.(models.MCPToolsListResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", response.Result)
	}
	if len(result.Tools) != 6 {
		t.Fatalf("expected 6 tools, got %d", len(result.Tools))
	}
	if result.Tools[0].Name != "create_pdf" {
		t.Errorf("expected create_pdf first, got %s", result.Tools[0].Name)
	}
	for _, tool := range result.Tools {
		if tool.InputSchema == nil {
			t.Errorf("tool %s has no input schema", tool.Name)
		}
	}
}

func TestHandleToolsCallSuccess(t *testing.T) {
	srv := newTestServer(t)

	response := srv.HandleMessage(request(3, "tools/call", map[string]interface{}{
		"name": "create_docx",
		"arguments": map[string]interface{}{
			"title":   "Report",
			"content": "Body text.",
		},
	}))
	if response == nil || response.Error != nil {
		t.Fatalf("unexpected response: %+v", response)
	}

	envelope, ok := response.Result.(models.MCPToolsCallResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", response.Result)
	}
	if envelope.IsError {
		t.Fatalf("tool reported failure: %+v", envelope.Content)
	}
	if len(envelope.Content) != 1 || envelope.Content[0].Type != "text" {
		t.Fatalf("expected single text content part, got %+v", envelope.Content)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(envelope.Content[0].Text), &payload); err != nil {
		t.Fatalf("content text is not JSON: %v", err)
	}
	if payload["success"] != true {
		t.Errorf("expected success=true, got %v", payload["success"])
	}
	if payload["file_path"] == nil {
		t.Error("file_path missing from result")
	}
}

func TestHandleToolsCallMissingName(t *testing.T) {
	srv := newTestServer(t)

	response := srv.HandleMessage(request(4, "tools/call", map[string]interface{}{
		"arguments": map[string]interface{}{},
	}))
	if response == nil || response.Error == nil {
		t.Fatal("expected protocol error")
	}
	if response.Error.Code != -32602 {
		t.Errorf("expected -32602, got %d", response.Error.Code)
	}
}

func TestHandleToolsCallUnknownTool(t *testing.T) {
	srv := newTestServer(t)

	response := srv.HandleMessage(request(5, "tools/call", map[string]interface{}{
		"name": "create_epub",
	}))
	if response == nil {
		t.Fatal("expected response")
	}
	// Unknown tool names are a failure envelope, not a protocol error.
	if response.Error != nil {
		t.Fatalf("unexpected protocol error: %+v", response.Error)
	}
	envelope, ok := response.Result.(models.MCPToolsCallResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", response.Result)
	}
	if !envelope.IsError {
		t.Error("expected isError envelope")
	}
}

func TestHandleToolsCallValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	response := srv.HandleMessage(request(6, "tools/call", map[string]interface{}{
		"name":      "create_pdf",
		"arguments": map[string]interface{}{"content": "no title"},
	}))
	if response == nil || response.Error != nil {
		t.Fatalf("unexpected response: %+v", response)
	}
	envelope := response.Result.(models.MCPToolsCallResult)
	if !envelope.IsError {
		t.Error("expected isError envelope for contract violation")
	}
}

func TestHandleResourcesListAndRead(t *testing.T) {
	srv := newTestServer(t)

	// Generate a document, then surface it through the inventory.
	response := srv.HandleMessage(request(8, "tools/call", map[string]interface{}{
		"name":      "create_pdf",
		"arguments": map[string]interface{}{"title": "Inventory Item"},
	}))
	envelope := response.Result.(models.MCPToolsCallResult)
	if envelope.IsError {
		t.Fatalf("create_pdf failed: %+v", envelope.Content)
	}
	if err := srv.inventory.Rescan(srv.cfg.Documents.OutputDir); err != nil {
		t.Fatalf("rescan failed: %v", err)
	}

	listResp := srv.HandleMessage(request(9, "resources/list", nil))
	listResult := listResp.Result.(models.MCPResourcesListResult)
	if len(listResult.Resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(listResult.Resources))
	}
	resource := listResult.Resources[0]
	if resource.MimeType != "application/pdf" {
		t.Errorf("unexpected mime type: %s", resource.MimeType)
	}

	readResp := srv.HandleMessage(request(10, "resources/read", map[string]interface{}{
		"uri": resource.URI,
	}))
	if readResp.Error != nil {
		t.Fatalf("resources/read failed: %+v", readResp.Error)
	}
	readResult := readResp.Result.(models.MCPResourcesReadResult)
	if len(readResult.Contents) != 1 || readResult.Contents[0].Blob == "" {
		t.Fatalf("expected blob content, got %+v", readResult.Contents)
	}
}

func TestHandleResourcesReadUnknownURI(t *testing.T) {
	srv := newTestServer(t)

	response := srv.HandleMessage(request(11, "resources/read", map[string]interface{}{
		"uri": resourceURIPrefix + "/nope.pdf",
	}))
	if response.Error == nil {
		t.Fatal("expected error for unknown resource")
	}
	if response.Error.Code != -32600 {
		t.Errorf("expected -32600, got %d", response.Error.Code)
	}
}
