package documents

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcp-document-service/internal/analyzer"
	"mcp-document-service/pkg/logging"
	"mcp-document-service/pkg/tools"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := logging.NewStructuredLoggerWithWriter("documents-test", io.Discard, slog.LevelError)
	return NewService(t.TempDir(), analyzer.New("", "", "", logger), logger)
}

func invoke(t *testing.T, svc *Service, name string, args map[string]interface{}) tools.Result {
	t.Helper()
	for _, tool := range svc.Tools() {
		if tool.Name != name {
			continue
		}
		validated, verr := tool.Contract.Validate(args)
		if verr != nil {
			t.Fatalf("validation failed for %s: %v", name, verr)
		}
		return tool.Handler(context.Background(), validated)
	}
	t.Fatalf("no such tool: %s", name)
	return tools.Result{}
}

func TestServicePublishesSixTools(t *testing.T) {
	svc := newTestService(t)

	expected := []string{"create_pdf", "create_docx", "create_pptx", "read_pdf", "read_docx", "read_pptx"}
	published := svc.Tools()
	if len(published) != len(expected) {
		t.Fatalf("expected %d tools, got %d", len(expected), len(published))
	}
	for i, name := range expected {
		if published[i].Name != name {
			t.Errorf("tool %d: expected %s, got %s", i, name, published[i].Name)
		}
	}
}

func TestCreateThenReadDOCX(t *testing.T) {
	svc := newTestService(t)

	created := invoke(t, svc, "create_docx", map[string]interface{}{
		"title":   "Meeting Notes",
		"content": "# Agenda\n\nDiscuss roadmap.\n\n- action item",
	})
	if created.IsError() {
		t.Fatalf("create_docx failed: %s", created.ErrorMessage())
	}
	path, _ := created.Field("file_path")
	if filepath.Base(path.(string)) != "meeting-notes.docx" {
		t.Errorf("unexpected derived file name: %v", path)
	}

	read := invoke(t, svc, "read_docx", map[string]interface{}{
		"file_path": path,
	})
	if read.IsError() {
		t.Fatalf("read_docx failed: %s", read.ErrorMessage())
	}
	text, _ := read.Field("text")
	if !strings.Contains(text.(string), "Discuss roadmap.") {
		t.Errorf("content did not round-trip: %q", text)
	}
	if _, ok := read.Field("analysis"); ok {
		t.Error("analysis attached without being requested")
	}
}

func TestCreateThenReadPPTXFromBase64(t *testing.T) {
	svc := newTestService(t)

	created := invoke(t, svc, "create_pptx", map[string]interface{}{
		"title":     "Launch Plan",
		"content":   "## Timeline\n\n- week one\n- week two",
		"file_name": "launch",
	})
	if created.IsError() {
		t.Fatalf("create_pptx failed: %s", created.ErrorMessage())
	}
	path, _ := created.Field("file_path")
	if filepath.Base(path.(string)) != "launch.pptx" {
		t.Errorf("extension not appended: %v", path)
	}
	count, _ := created.Field("slide_count")
	if count != 2 {
		t.Errorf("expected 2 slides, got %v", count)
	}

	raw, err := os.ReadFile(path.(string))
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	read := invoke(t, svc, "read_pptx", map[string]interface{}{
		"base64_content": base64.StdEncoding.EncodeToString(raw),
	})
	if read.IsError() {
		t.Fatalf("read_pptx failed: %s", read.ErrorMessage())
	}
	text, _ := read.Field("text")
	if !strings.Contains(text.(string), "Launch Plan") {
		t.Errorf("title missing from extracted text: %q", text)
	}
}

func TestCreatePDFReportsMetadata(t *testing.T) {
	svc := newTestService(t)

	created := invoke(t, svc, "create_pdf", map[string]interface{}{
		"title":     "Spec Sheet",
		"content":   "Some body text.",
		"page_size": "Letter",
	})
	if created.IsError() {
		t.Fatalf("create_pdf failed: %s", created.ErrorMessage())
	}

	path, _ := created.Field("file_path")
	raw, err := os.ReadFile(path.(string))
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if !strings.HasPrefix(string(raw), "%PDF-") {
		t.Error("generated file is not a PDF")
	}
	if pages, _ := created.Field("page_count"); pages != 1 {
		t.Errorf("expected 1 page, got %v", pages)
	}
	if size, _ := created.Field("byte_size"); size != len(raw) {
		t.Errorf("byte_size %v does not match file size %d", size, len(raw))
	}
}

func TestReadToolFailures(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		tool    string
		args    map[string]interface{}
		wantMsg string
	}{
		{
			name:    "missing file",
			tool:    "read_pdf",
			args:    map[string]interface{}{"file_path": "/nonexistent/report.pdf"},
			wantMsg: "file not found",
		},
		{
			name:    "invalid base64",
			tool:    "read_docx",
			args:    map[string]interface{}{"base64_content": "%%%not-base64%%%"},
			wantMsg: "invalid base64",
		},
		{
			name:    "malformed document",
			tool:    "read_pptx",
			args:    map[string]interface{}{"base64_content": base64.StdEncoding.EncodeToString([]byte("junk"))},
			wantMsg: "parse pptx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := invoke(t, svc, tt.tool, tt.args)
			if !result.IsError() {
				t.Fatal("expected failure result")
			}
			if !strings.Contains(result.ErrorMessage(), tt.wantMsg) {
				t.Errorf("expected %q in message, got %q", tt.wantMsg, result.ErrorMessage())
			}
		})
	}
}

func TestAnalyzeWithoutConfiguredAnalyzer(t *testing.T) {
	svc := newTestService(t)

	created := invoke(t, svc, "create_docx", map[string]interface{}{
		"title": "Notes",
	})
	if created.IsError() {
		t.Fatalf("create_docx failed: %s", created.ErrorMessage())
	}
	path, _ := created.Field("file_path")

	read := invoke(t, svc, "read_docx", map[string]interface{}{
		"file_path": path,
		"analyze":   true,
	})
	if read.IsError() {
		t.Fatalf("read_docx failed: %s", read.ErrorMessage())
	}
	note, ok := read.Field("analysis_note")
	if !ok || !strings.Contains(note.(string), "no analyzer") {
		t.Errorf("expected analyzer note, got %v", note)
	}
	if _, ok := read.Field("analysis"); ok {
		t.Error("analysis present despite unconfigured analyzer")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		ext     string
		want    string
		wantErr bool
	}{
		{in: "report", ext: ".pdf", want: "report.pdf"},
		{in: "report.PDF", ext: ".pdf", want: "report.PDF"},
		{in: "../escape", ext: ".pdf", wantErr: true},
		{in: "dir/report", ext: ".pdf", wantErr: true},
		{in: `dir\report`, ext: ".pdf", wantErr: true},
		{in: "", ext: ".pdf", wantErr: true},
	}

	for _, tt := range tests {
		got, err := sanitizeFileName(tt.in, tt.ext)
		if tt.wantErr {
			if err == nil {
				t.Errorf("sanitizeFileName(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("sanitizeFileName(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Meeting Notes", "meeting-notes"},
		{"Q3 -- Planning!", "q3-planning"},
		{"***", "document"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
