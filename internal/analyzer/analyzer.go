// Package analyzer calls an OpenAI-compatible chat completions API to
// produce short summaries of extracted document text.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"mcp-document-service/pkg/errors"
	"mcp-document-service/pkg/logging"
)

const (
	defaultTimeout = 60 * time.Second

	// maxInputChars bounds how much document text is sent per request.
	maxInputChars = 24000

	systemPrompt = "You are a document analyst. Summarize the provided document text in a short paragraph, then list its key points as bullet lines."
)

// Client is a thin OpenAI-compatible chat completions client. A client
// with an empty API key is valid but reports itself unavailable.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *logging.StructuredLogger
}

// New creates an analyzer client. baseURL is the API root without the
// /chat/completions suffix.
func New(apiKey, model, baseURL string, logger *logging.StructuredLogger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// Available reports whether the client is configured with credentials.
func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize sends the document text to the completions endpoint and
// returns the model's summary.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if !c.Available() {
		return "", errors.NewProviderError(
			errors.ErrCodeProviderUnavailable,
			"analyzer is not configured", nil)
	}

	if len(text) > maxInputChars {
		cut := maxInputChars
		// Back up to a rune boundary so the cut never splits a UTF-8
		// sequence.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewProviderError(
			errors.ErrCodeProviderUnavailable,
			fmt.Sprintf("analyzer request failed: %v", err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	c.logger.WithContext("model", c.model).
		WithContext("status", resp.StatusCode).
		WithContext("duration_ms", time.Since(start).Milliseconds()).
		Debug("Analyzer request completed")

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("analyzer returned status %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, parsed.Error.Message)
		}
		return "", errors.NewProviderError(errors.ErrCodeProviderUnavailable, msg, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.NewProviderError(errors.ErrCodeProviderUnavailable,
			"analyzer returned no choices", nil)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
