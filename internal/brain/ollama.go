// Package brain provides the OllamaBrain implementation for local inference.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/normanking/luna/internal/config"
)

// OllamaBrain implements Brain against a local ollama server.
type OllamaBrain struct {
	cfg    config.GenerationConfig
	client *http.Client
}

// NewOllamaBrain creates a brain backed by a local ollama instance.
func NewOllamaBrain(cfg config.GenerationConfig) *OllamaBrain {
	return &OllamaBrain{
		cfg: cfg,
		client: &http.Client{
			Timeout: 5 * time.Minute, // per-call deadlines come from the request context
		},
	}
}

// ollamaRequest is the request format for the ollama generate API.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaResponse is the response format from the ollama API.
type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate calls ollama's generate endpoint, bounded by timeout.
func (b *OllamaBrain) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	url := b.baseURL() + "/api/generate"

	body, err := json.Marshal(ollamaRequest{
		Model:  b.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(respBody))
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", err
	}

	return strings.TrimSpace(ollamaResp.Response), nil
}

// Ping checks whether the ollama server is reachable.
func (b *OllamaBrain) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", b.baseURL()+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

// baseURL returns the configured engine URL without a trailing slash.
func (b *OllamaBrain) baseURL() string {
	return strings.TrimRight(b.cfg.URL, "/")
}
