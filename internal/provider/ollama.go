package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2"

	// Local models are slower than hosted APIs.
	defaultOllamaTimeout = 120 * time.Second
)

// OllamaProvider answers through a local Ollama instance.
type OllamaProvider struct {
	ops
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Ollama API structures.
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates an Ollama provider. No key is needed; the base
// URL defaults to the local daemon.
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultOllamaTimeout
	}

	p := &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
	}
	p.ops = ops{name: "ollama", maxTexts: config.MaxFilterTexts, complete: p.completion}
	return p, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string { return "ollama" }

// RequiresPacing reports that local calls need no mandatory spacing.
func (p *OllamaProvider) RequiresPacing() bool { return false }

// IsAvailable checks the daemon is running by listing installed models.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (p *OllamaProvider) completion(ctx context.Context, op, system, user string) (string, error) {
	model := p.config.Model
	if model == "" {
		model = defaultOllamaModel
	}

	resp, err := p.makeRequest(ctx, op, ollamaRequest{
		Model:  model,
		Prompt: user,
		Stream: false, // read the complete response at once
		System: system,
		Options: ollamaOptions{
			Temperature: 0.3,
			NumPredict:  maxResponseTokens,
		},
	})
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(resp.Response)
	if reply == "" {
		return "", &Error{Provider: "ollama", Op: op, Kind: KindParse, Err: errors.New("empty response field")}
	}
	return reply, nil
}

// makeRequest posts to /api/generate and decodes the response envelope.
func (p *OllamaProvider) makeRequest(ctx context.Context, op string, apiReq ollamaRequest) (*ollamaResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, &Error{Provider: "ollama", Op: op, Kind: KindTransport, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: "ollama", Op: op, Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Provider: "ollama", Op: op, Kind: KindTransport, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Provider: "ollama", Op: op, Kind: KindTransport, Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		kind := kindForStatus(httpResp.StatusCode)
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, &Error{Provider: "ollama", Op: op, Kind: kind, Err: fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)}
		}
		return nil, &Error{Provider: "ollama", Op: op, Kind: kind, Err: fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))}
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &Error{Provider: "ollama", Op: op, Kind: KindParse, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return &resp, nil
}
