// Package config holds the service configuration: defaults, an optional
// TOML file, and environment variable overrides, applied in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Service identity constants
const (
	ServiceName    = "mcp-document-service"
	ServiceVersion = "1.0.0"

	ServiceDescription = "MCP server exposing PDF, DOCX and PPTX document tools"
)

// Environment variable names recognized by Load.
const (
	EnvOutputDir  = "DOCSVC_OUTPUT_DIR"
	EnvAPIKey     = "DOCSVC_AI_API_KEY"
	EnvAIModel    = "DOCSVC_AI_MODEL"
	EnvAIBaseURL  = "DOCSVC_AI_BASE_URL"
	EnvHTTPAddr   = "DOCSVC_HTTP_ADDR"
	EnvLogLevel   = "DOCSVC_LOG_LEVEL"
	EnvConfigFile = "DOCSVC_CONFIG"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	HTTP      HTTPConfig      `toml:"http"`
	Documents DocumentsConfig `toml:"documents"`
	Analyzer  AnalyzerConfig  `toml:"analyzer"`
}

// ServerConfig covers process identity and logging.
type ServerConfig struct {
	LogLevel string `toml:"log_level"`
}

// HTTPConfig covers the SSE transport binding.
type HTTPConfig struct {
	Addr        string `toml:"addr"`
	SSEPath     string `toml:"sse_path"`
	MessagePath string `toml:"message_path"`
	HealthPath  string `toml:"health_path"`
}

// DocumentsConfig covers the file-producing tools.
type DocumentsConfig struct {
	OutputDir string `toml:"output_dir"`
}

// AnalyzerConfig covers the optional AI summarizer collaborator.
// An empty APIKey disables analysis; that is a reported condition for
// read tools invoked with analyze=true, not an error.
type AnalyzerConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "/tmp"
	}
	return Config{
		Server: ServerConfig{LogLevel: "INFO"},
		HTTP: HTTPConfig{
			Addr:        "localhost:8080",
			SSEPath:     "/sse",
			MessagePath: "/messages",
			HealthPath:  "/healthz",
		},
		Documents: DocumentsConfig{
			OutputDir: filepath.Join(home, "documents", "generated"),
		},
		Analyzer: AnalyzerConfig{
			Model:   "gpt-4o-mini",
			BaseURL: "https://api.openai.com/v1",
		},
	}
}

// Load builds the configuration: defaults, then the TOML file at path (if
// path is empty, the DOCSVC_CONFIG env var is consulted; a missing file is
// not an error), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("decode config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Documents.OutputDir = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Analyzer.APIKey = v
	}
	if v := os.Getenv(EnvAIModel); v != "" {
		cfg.Analyzer.Model = v
	}
	if v := os.Getenv(EnvAIBaseURL); v != "" {
		cfg.Analyzer.BaseURL = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Server.LogLevel = v
	}
}
