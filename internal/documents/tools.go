package documents

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcp-document-service/internal/analyzer"
	"mcp-document-service/pkg/logging"
	"mcp-document-service/pkg/schema"
	"mcp-document-service/pkg/tools"
)

// Service owns the document tools: three creators that render Markdown
// content into PDF, DOCX, and PPTX files under the output directory, and
// three readers that extract text from existing documents.
type Service struct {
	outputDir string
	analyzer  *analyzer.Client
	logger    *logging.StructuredLogger
}

// NewService creates the document tool service. The analyzer may be an
// unconfigured client; read tools then report analysis as unavailable
// instead of failing.
func NewService(outputDir string, analyzerClient *analyzer.Client, logger *logging.StructuredLogger) *Service {
	return &Service{
		outputDir: outputDir,
		analyzer:  analyzerClient,
		logger:    logger,
	}
}

// Tools returns the tool descriptors in their published order.
func (s *Service) Tools() []*tools.Tool {
	return []*tools.Tool{
		s.createPDFTool(),
		s.createDOCXTool(),
		s.createPPTXTool(),
		s.readPDFTool(),
		s.readDOCXTool(),
		s.readPPTXTool(),
	}
}

func createContract(extra ...schema.Field) *schema.Contract {
	fields := []schema.Field{
		{
			Name:        "title",
			Type:        schema.TypeString,
			Description: "Document title, rendered as the top-level heading",
			Required:    true,
			MaxLength:   300,
		},
		{
			Name:        "content",
			Type:        schema.TypeString,
			Description: "Document body in Markdown (headings, paragraphs, lists, code blocks)",
			Default:     "",
		},
		{
			Name:        "file_name",
			Type:        schema.TypeString,
			Description: "Output file name without directory components; derived from the title when omitted",
			MaxLength:   255,
		},
	}
	return schema.NewContract(append(fields, extra...)...)
}

func readContract() *schema.Contract {
	return schema.NewContract(
		schema.Field{
			Name:        "file_path",
			Type:        schema.TypeString,
			Description: "Path to the document on disk",
		},
		schema.Field{
			Name:        "base64_content",
			Type:        schema.TypeString,
			Description: "Document bytes as standard base64, used when no file path is given",
		},
		schema.Field{
			Name:        "analyze",
			Type:        schema.TypeBoolean,
			Description: "Attach an AI-generated summary of the extracted text",
			Default:     false,
		},
	).Refine(schema.RequireOneOf("file_path", "base64_content"))
}

func (s *Service) createPDFTool() *tools.Tool {
	return &tools.Tool{
		Name:        "create_pdf",
		Description: "Create a PDF document from Markdown content and save it to the output directory",
		Contract: createContract(schema.Field{
			Name:        "page_size",
			Type:        schema.TypeString,
			Description: "Page size for the generated document",
			Enum:        []string{"A4", "Letter", "Legal"},
			Default:     "A4",
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) tools.Result {
			title := stringArg(args, "title")
			blocks := ParseBlocks([]byte(stringArg(args, "content")))

			data, pages, err := BuildPDF(title, blocks, stringArg(args, "page_size"))
			if err != nil {
				return tools.Failf("render pdf: %v", err)
			}
			path, res := s.writeDocument(args, title, ".pdf", data)
			if res.IsError() {
				return res
			}
			return tools.OK().
				With("file_path", path).
				With("page_count", pages).
				With("byte_size", len(data))
		},
	}
}

func (s *Service) createDOCXTool() *tools.Tool {
	return &tools.Tool{
		Name:        "create_docx",
		Description: "Create a Word document from Markdown content and save it to the output directory",
		Contract:    createContract(),
		Handler: func(ctx context.Context, args map[string]interface{}) tools.Result {
			title := stringArg(args, "title")
			blocks := ParseBlocks([]byte(stringArg(args, "content")))

			data, paragraphs, err := BuildDOCX(title, blocks)
			if err != nil {
				return tools.Failf("render docx: %v", err)
			}
			path, res := s.writeDocument(args, title, ".docx", data)
			if res.IsError() {
				return res
			}
			return tools.OK().
				With("file_path", path).
				With("paragraph_count", paragraphs).
				With("byte_size", len(data))
		},
	}
}

func (s *Service) createPPTXTool() *tools.Tool {
	return &tools.Tool{
		Name:        "create_pptx",
		Description: "Create a PowerPoint presentation from Markdown content and save it to the output directory",
		Contract:    createContract(),
		Handler: func(ctx context.Context, args map[string]interface{}) tools.Result {
			title := stringArg(args, "title")
			blocks := ParseBlocks([]byte(stringArg(args, "content")))

			data, slides, err := BuildPPTX(title, blocks)
			if err != nil {
				return tools.Failf("render pptx: %v", err)
			}
			path, res := s.writeDocument(args, title, ".pptx", data)
			if res.IsError() {
				return res
			}
			return tools.OK().
				With("file_path", path).
				With("slide_count", slides).
				With("byte_size", len(data))
		},
	}
}

func (s *Service) readPDFTool() *tools.Tool {
	return &tools.Tool{
		Name:        "read_pdf",
		Description: "Extract text from a PDF document given as a file path or base64 content",
		Contract:    readContract(),
		Handler: func(ctx context.Context, args map[string]interface{}) tools.Result {
			content, res := loadContent(args)
			if res.IsError() {
				return res
			}
			extracted, err := ExtractPDF(content)
			if err != nil {
				return tools.Failf("parse pdf: %v", err)
			}
			out := tools.OK().
				With("text", extracted.Text).
				With("page_count", extracted.PageCount)
			return s.maybeAnalyze(ctx, args, out, extracted.Text)
		},
	}
}

func (s *Service) readDOCXTool() *tools.Tool {
	return &tools.Tool{
		Name:        "read_docx",
		Description: "Extract text from a Word document given as a file path or base64 content",
		Contract:    readContract(),
		Handler: func(ctx context.Context, args map[string]interface{}) tools.Result {
			content, res := loadContent(args)
			if res.IsError() {
				return res
			}
			extracted, err := ExtractDOCX(content)
			if err != nil {
				return tools.Failf("parse docx: %v", err)
			}
			out := tools.OK().
				With("text", extracted.Text).
				With("paragraph_count", extracted.ParagraphCount)
			if len(extracted.Headings) > 0 {
				out = out.With("headings", extracted.Headings)
			}
			return s.maybeAnalyze(ctx, args, out, extracted.Text)
		},
	}
}

func (s *Service) readPPTXTool() *tools.Tool {
	return &tools.Tool{
		Name:        "read_pptx",
		Description: "Extract text from a PowerPoint presentation given as a file path or base64 content",
		Contract:    readContract(),
		Handler: func(ctx context.Context, args map[string]interface{}) tools.Result {
			content, res := loadContent(args)
			if res.IsError() {
				return res
			}
			extracted, err := ExtractPPTX(content)
			if err != nil {
				return tools.Failf("parse pptx: %v", err)
			}
			out := tools.OK().
				With("text", extracted.Text).
				With("slide_count", extracted.SlideCount)
			return s.maybeAnalyze(ctx, args, out, extracted.Text)
		},
	}
}

// writeDocument resolves the output file name and writes the rendered
// bytes under the output directory. Failures come back as tool results
// so handlers can return them directly.
func (s *Service) writeDocument(args map[string]interface{}, title, ext string, data []byte) (string, tools.Result) {
	name := stringArg(args, "file_name")
	if name == "" {
		name = slugify(title)
	}
	name, err := sanitizeFileName(name, ext)
	if err != nil {
		return "", tools.Failf("invalid file_name: %v", err)
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", tools.Failf("create output directory: %v", err)
	}
	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", tools.Failf("write document: %v", err)
	}

	s.logger.WithContext("path", path).
		WithContext("byte_size", len(data)).
		Info("Document written")

	return path, tools.OK()
}

// maybeAnalyze attaches an AI summary to a successful read result when
// the caller asked for one. Analyzer problems degrade to a note rather
// than failing the read.
func (s *Service) maybeAnalyze(ctx context.Context, args map[string]interface{}, out tools.Result, text string) tools.Result {
	if !boolArg(args, "analyze") {
		return out
	}
	if !s.analyzer.Available() {
		return out.With("analysis_note", "analysis requested but no analyzer is configured")
	}
	summary, err := s.analyzer.Summarize(ctx, text)
	if err != nil {
		s.logger.WithError(err).Warn("Analyzer call failed")
		return out.With("analysis_note", fmt.Sprintf("analysis unavailable: %v", err))
	}
	return out.With("analysis", summary)
}

// loadContent resolves the read-tool input source: a file path when
// given, otherwise base64 bytes.
func loadContent(args map[string]interface{}) ([]byte, tools.Result) {
	if path := stringArg(args, "file_path"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, tools.Failf("file not found: %s", path)
			}
			return nil, tools.Failf("read file: %v", err)
		}
		return content, tools.OK()
	}

	content, err := base64.StdEncoding.DecodeString(stringArg(args, "base64_content"))
	if err != nil {
		return nil, tools.Failf("invalid base64 content: %v", err)
	}
	return content, tools.OK()
}

// sanitizeFileName rejects names that escape the output directory and
// normalizes the extension.
func sanitizeFileName(name, ext string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("file name must not contain directory components")
	}
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("file name must not contain path traversal sequences")
	}
	if !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return name, nil
}

// slugify derives a file name stem from a document title.
func slugify(title string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		slug = "document"
	}
	return slug
}

func stringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]interface{}, name string) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return false
}
