// Package inventory tracks the documents generated into the output
// directory. It is populated by a full rescan at startup and kept current
// by file system events from the output monitor.
package inventory

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/logging"
)

// Inventory is an in-memory index of generated documents keyed by path.
type Inventory struct {
	documents map[string]models.GeneratedDocument
	mutex     sync.RWMutex
	logger    *logging.StructuredLogger

	stats Stats
}

// Stats tracks inventory activity for the health endpoint.
type Stats struct {
	Rescans   int64 `json:"rescans"`
	Additions int64 `json:"additions"`
	Removals  int64 `json:"removals"`
}

// New creates an empty inventory.
func New(logger *logging.StructuredLogger) *Inventory {
	return &Inventory{
		documents: make(map[string]models.GeneratedDocument),
		logger:    logger,
	}
}

// Rescan walks dir and replaces the inventory contents with every tracked
// document format found there. A missing directory empties the inventory
// and is not an error (the first create tool call will create it).
func (inv *Inventory) Rescan(dir string) error {
	fresh := make(map[string]models.GeneratedDocument)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			inv.replace(fresh)
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, ok := stat(path)
		if !ok {
			continue
		}
		fresh[path] = doc
	}

	inv.replace(fresh)
	inv.logger.WithContext("documents", len(fresh)).
		WithContext("dir", dir).
		Info("Output directory rescanned")
	return nil
}

func (inv *Inventory) replace(docs map[string]models.GeneratedDocument) {
	inv.mutex.Lock()
	defer inv.mutex.Unlock()
	inv.documents = docs
	inv.stats.Rescans++
}

// Apply updates the inventory for one file system event.
func (inv *Inventory) Apply(event models.FileEvent) {
	if models.FormatForPath(event.Path) == "" {
		return
	}

	switch event.Type {
	case "create", "modify":
		doc, ok := stat(event.Path)
		if !ok {
			return
		}
		inv.mutex.Lock()
		_, existed := inv.documents[event.Path]
		inv.documents[event.Path] = doc
		if !existed {
			inv.stats.Additions++
		}
		inv.mutex.Unlock()
	case "delete":
		inv.mutex.Lock()
		if _, existed := inv.documents[event.Path]; existed {
			delete(inv.documents, event.Path)
			inv.stats.Removals++
		}
		inv.mutex.Unlock()
	}
}

// Get returns the document record for a path.
func (inv *Inventory) Get(path string) (models.GeneratedDocument, bool) {
	inv.mutex.RLock()
	defer inv.mutex.RUnlock()
	doc, ok := inv.documents[path]
	return doc, ok
}

// Snapshot returns all tracked documents sorted by path.
func (inv *Inventory) Snapshot() []models.GeneratedDocument {
	inv.mutex.RLock()
	defer inv.mutex.RUnlock()

	docs := make([]models.GeneratedDocument, 0, len(inv.documents))
	for _, doc := range inv.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs
}

// Size returns the number of tracked documents.
func (inv *Inventory) Size() int {
	inv.mutex.RLock()
	defer inv.mutex.RUnlock()
	return len(inv.documents)
}

// GetStats returns a copy of the activity counters.
func (inv *Inventory) GetStats() Stats {
	inv.mutex.RLock()
	defer inv.mutex.RUnlock()
	return inv.stats
}

// stat builds a GeneratedDocument from the file on disk. Returns false for
// untracked formats or files that vanished between the event and the stat.
func stat(path string) (models.GeneratedDocument, bool) {
	format := models.FormatForPath(path)
	if format == "" {
		return models.GeneratedDocument{}, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return models.GeneratedDocument{}, false
	}
	return models.GeneratedDocument{
		Path:         path,
		Name:         filepath.Base(path),
		Format:       format,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, true
}
