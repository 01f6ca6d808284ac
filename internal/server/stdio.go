package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"mcp-document-service/internal/models"
)

// maxLineSize bounds a single stdio request line (16 MiB accommodates
// base64 document payloads).
const maxLineSize = 16 * 1024 * 1024

// ServeStdio runs the line-delimited transport: one JSON-RPC message
// per input line, one response per output line. Diagnostics never touch
// the writer; all logging goes to stderr. Returns nil on EOF.
func (s *MCPServer) ServeStdio(ctx context.Context, reader io.Reader, writer io.Writer) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	encoder := json.NewEncoder(writer)

	s.logger.Info("Stdio transport ready")

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownChan:
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var message models.MCPMessage
		if err := json.Unmarshal([]byte(line), &message); err != nil {
			s.logger.WithError(err).Warn("Discarding malformed request line")
			response := s.createErrorResponse(nil, -32700, "Parse error")
			if err := encoder.Encode(response); err != nil {
				return err
			}
			continue
		}

		response := s.handleMessage(&message)
		if response == nil {
			continue // notification
		}
		if err := encoder.Encode(response); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	s.logger.Info("Stdio transport closed on EOF")
	return nil
}
