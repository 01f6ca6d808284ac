package models

import (
	"path/filepath"
	"strings"
	"time"
)

// GeneratedDocument describes one file produced by a create tool and
// tracked in the output directory inventory.
type GeneratedDocument struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Format       string    `json:"format"` // "pdf", "docx" or "pptx"
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// FileEvent represents a file system change in the output directory
type FileEvent struct {
	Type  string `json:"type"` // "create", "modify" or "delete"
	Path  string `json:"path"`
	IsDir bool   `json:"isDir"`
}

// DocumentFormats lists the file extensions the inventory tracks.
var DocumentFormats = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// FormatForPath returns the document format ("pdf", "docx", "pptx") for a
// file path, or "" when the extension is not a tracked document format.
func FormatForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := DocumentFormats[ext]; !ok {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// MimeTypeForFormat returns the MIME type for a document format.
func MimeTypeForFormat(format string) string {
	return DocumentFormats["."+format]
}
