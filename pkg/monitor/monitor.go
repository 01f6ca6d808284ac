// Package monitor watches the output directory for document changes and
// feeds debounced file events to the inventory refresh coordinator.
package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/logging"
)

// OutputMonitor monitors the generated-document output directory.
type OutputMonitor struct {
	watcher       *fsnotify.Watcher
	debounceDelay time.Duration
	callbacks     []func(models.FileEvent)
	logger        *logging.StructuredLogger
	mu            sync.Mutex
}

// NewOutputMonitor creates a new output directory monitor.
func NewOutputMonitor(logger *logging.StructuredLogger) (*OutputMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &OutputMonitor{
		watcher:       watcher,
		debounceDelay: 500 * time.Millisecond,
		callbacks:     make([]func(models.FileEvent), 0),
		logger:        logger,
	}, nil
}

// WatchDirectory starts watching a directory for document changes.
func (om *OutputMonitor) WatchDirectory(path string, callback func(models.FileEvent)) error {
	om.mu.Lock()
	om.callbacks = append(om.callbacks, callback)
	om.mu.Unlock()

	if err := om.watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", path, err)
	}

	go om.monitorEvents()

	om.logger.WithContext("dir", path).Info("Started monitoring output directory")
	return nil
}

// StopWatching stops the file system monitoring.
func (om *OutputMonitor) StopWatching() error {
	if om.watcher != nil {
		return om.watcher.Close()
	}
	return nil
}

// monitorEvents processes file system events with debouncing.
func (om *OutputMonitor) monitorEvents() {
	var timerMu sync.Mutex
	debounceTimer := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-om.watcher.Events:
			if !ok {
				return
			}

			// Only process generated document formats
			if models.FormatForPath(event.Name) == "" {
				continue
			}

			// Debounce events for the same file
			timerMu.Lock()
			if timer, exists := debounceTimer[event.Name]; exists {
				timer.Stop()
			}
			name := event.Name
			ev := event
			debounceTimer[name] = time.AfterFunc(om.debounceDelay, func() {
				om.processEvent(ev)
				timerMu.Lock()
				delete(debounceTimer, name)
				timerMu.Unlock()
			})
			timerMu.Unlock()

		case err, ok := <-om.watcher.Errors:
			if !ok {
				return
			}
			om.logger.WithError(err).Warn("File watcher error")
		}
	}
}

// processEvent converts fsnotify events to FileEvent and calls callbacks
func (om *OutputMonitor) processEvent(event fsnotify.Event) {
	var eventType string
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = "create"
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = "modify"
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = "delete"
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = "delete" // Treat rename as delete for simplicity
	default:
		return
	}

	fileEvent := models.FileEvent{
		Type:  eventType,
		Path:  event.Name,
		IsDir: false,
	}

	om.logger.LogFileSystemEvent(eventType, event.Name)

	om.mu.Lock()
	callbacks := append(([]func(models.FileEvent))(nil), om.callbacks...)
	om.mu.Unlock()

	for _, callback := range callbacks {
		callback(fileEvent)
	}
}

// SetDebounceDelay overrides the debounce window. Used by tests.
func (om *OutputMonitor) SetDebounceDelay(d time.Duration) {
	om.debounceDelay = d
}
