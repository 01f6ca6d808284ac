// Package server implements the MCP protocol layer: message routing,
// the stdio and HTTP/SSE transport bindings, and session lifecycle.
package server

import (
	"context"
	"os"
	"sync"
	"time"

	"mcp-document-service/internal/analyzer"
	"mcp-document-service/internal/documents"
	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/config"
	"mcp-document-service/pkg/inventory"
	"mcp-document-service/pkg/logging"
	"mcp-document-service/pkg/monitor"
	"mcp-document-service/pkg/tools"
)

// MCPServer routes MCP messages to the tool registry and the generated
// document inventory. One instance serves the stdio transport; the SSE
// transport derives one instance per session, all sharing the registry,
// inventory and monitor.
type MCPServer struct {
	serverInfo   models.MCPServerInfo
	capabilities models.MCPCapabilities
	initialized  bool

	cfg       config.Config
	registry  *tools.Registry
	inventory *inventory.Inventory
	monitor   *monitor.OutputMonitor

	loggingManager *logging.LoggingManager
	logger         *logging.StructuredLogger

	refreshChan  chan models.FileEvent
	shutdownChan chan struct{}

	mu sync.RWMutex
}

// NewMCPServer wires the full server: logging, tool registry with the
// six document tools, the output inventory and the directory monitor.
func NewMCPServer(cfg config.Config) (*MCPServer, error) {
	loggingManager := logging.NewLoggingManager()
	loggingManager.SetGlobalContext("service", config.ServiceName)
	loggingManager.SetGlobalContext("version", config.ServiceVersion)
	loggingManager.SetLogLevel(cfg.Server.LogLevel)
	logger := loggingManager.GetLogger("server")

	analyzerClient := analyzer.New(cfg.Analyzer.APIKey, cfg.Analyzer.Model,
		cfg.Analyzer.BaseURL, loggingManager.GetLogger("analyzer"))
	docService := documents.NewService(cfg.Documents.OutputDir, analyzerClient,
		loggingManager.GetLogger("documents"))

	registry := tools.NewRegistry(loggingManager.GetLogger("tools"))
	if err := registry.RegisterAll(docService.Tools()); err != nil {
		return nil, err
	}

	inv := inventory.New(loggingManager.GetLogger("inventory"))

	outputMonitor, err := monitor.NewOutputMonitor(loggingManager.GetLogger("monitor"))
	if err != nil {
		logger.WithError(err).Warn("Output directory monitoring unavailable")
		outputMonitor = nil
	}

	return &MCPServer{
		serverInfo: models.MCPServerInfo{
			Name:    config.ServiceName,
			Version: config.ServiceVersion,
		},
		capabilities: models.MCPCapabilities{
			Tools: &models.MCPToolCapabilities{},
			Resources: &models.MCPResourceCapabilities{
				Subscribe:   false,
				ListChanged: false,
			},
		},
		cfg:            cfg,
		registry:       registry,
		inventory:      inv,
		monitor:        outputMonitor,
		loggingManager: loggingManager,
		logger:         logger,
		refreshChan:    make(chan models.FileEvent, 100),
		shutdownChan:   make(chan struct{}),
	}, nil
}

// derive creates a per-session server that shares the registry,
// inventory and monitor but carries its own initialization state. The
// derived server does not own the refresh coordinator.
func (s *MCPServer) derive(component string) *MCPServer {
	return &MCPServer{
		serverInfo:     s.serverInfo,
		capabilities:   s.capabilities,
		cfg:            s.cfg,
		registry:       s.registry,
		inventory:      s.inventory,
		monitor:        s.monitor,
		loggingManager: s.loggingManager,
		logger:         s.loggingManager.GetLogger(component),
		refreshChan:    s.refreshChan,
		shutdownChan:   s.shutdownChan,
	}
}

// Bootstrap prepares the shared state every transport needs: the output
// directory, its inventory, the directory watch and the refresh
// coordinator. It does not start a transport.
func (s *MCPServer) Bootstrap(ctx context.Context) error {
	startTime := time.Now()
	s.logger.LogStartup("bootstrap_start", map[string]interface{}{
		"output_dir": s.cfg.Documents.OutputDir,
	})

	if err := os.MkdirAll(s.cfg.Documents.OutputDir, 0o755); err != nil {
		return err
	}

	if err := s.inventory.Rescan(s.cfg.Documents.OutputDir); err != nil {
		s.logger.WithError(err).Warn("Initial inventory scan failed")
	}

	if s.monitor != nil {
		err := s.monitor.WatchDirectory(s.cfg.Documents.OutputDir, func(event models.FileEvent) {
			select {
			case s.refreshChan <- event:
			default:
				s.logger.WithContext("path", event.Path).
					Warn("Refresh channel full, dropping file event")
			}
		})
		if err != nil {
			s.logger.WithError(err).Warn("Failed to watch output directory")
		}
	}

	go s.refreshCoordinator(ctx)

	s.logger.LogStartup("bootstrap_complete", map[string]interface{}{
		"tools":             s.registry.Len(),
		"documents":         s.inventory.Size(),
		"startup_time_ms":   time.Since(startTime).Milliseconds(),
		"monitoring_active": s.monitor != nil,
	})
	return nil
}

// Shutdown stops background work. Safe to call once.
func (s *MCPServer) Shutdown(ctx context.Context) error {
	s.logger.LogShutdown("shutdown_start", map[string]interface{}{})

	close(s.shutdownChan)

	if s.monitor != nil {
		if err := s.monitor.StopWatching(); err != nil {
			s.logger.WithError(err).Error("Error stopping output monitor")
		}
	}

	s.logger.LogShutdown("shutdown_complete", map[string]interface{}{})
	return nil
}

// Registry exposes the shared tool registry.
func (s *MCPServer) Registry() *tools.Registry {
	return s.registry
}

// Inventory exposes the generated document inventory.
func (s *MCPServer) Inventory() *inventory.Inventory {
	return s.inventory
}

// HandleMessage processes one MCP message and returns the response, or
// nil for notifications.
func (s *MCPServer) HandleMessage(message *models.MCPMessage) *models.MCPMessage {
	return s.handleMessage(message)
}

func (s *MCPServer) handleMessage(message *models.MCPMessage) *models.MCPMessage {
	startTime := time.Now()
	var response *models.MCPMessage

	defer func() {
		success := response == nil || response.Error == nil
		s.logger.LogMCPMessage(message.Method, message.ID, time.Since(startTime), success)
	}()

	switch message.Method {
	case "initialize":
		response = s.handleInitialize(message)
	case "notifications/initialized":
		response = s.handleInitialized(message)
	case "tools/list":
		response = s.handleToolsList(message)
	case "tools/call":
		response = s.handleToolsCall(message)
	case "resources/list":
		response = s.handleResourcesList(message)
	case "resources/read":
		response = s.handleResourcesRead(message)
	default:
		response = s.createErrorResponse(message.ID, -32601, "Method not found")
	}

	return response
}
