package server

import (
	"context"
)

// refreshCoordinator applies output directory file events to the
// inventory so resources/list stays current without rescanning.
func (s *MCPServer) refreshCoordinator(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownChan:
			return
		case event := <-s.refreshChan:
			s.logger.LogFileSystemEvent(event.Type, event.Path)
			s.inventory.Apply(event)
		}
	}
}
