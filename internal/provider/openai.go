package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const maxResponseTokens = 500

// OpenAIProvider answers through OpenAI's Chat Completions API.
type OpenAIProvider struct {
	ops
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates an OpenAI provider. The API key is required.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	p := &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
	p.ops = ops{name: "openai", maxTexts: config.MaxFilterTexts, complete: p.completion}
	return p, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

// RequiresPacing reports that OpenAI calls need no mandatory spacing.
func (p *OpenAIProvider) RequiresPacing() bool { return false }

// IsAvailable checks the key works by listing models, a lightweight call.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

func (p *OpenAIProvider) completion(ctx context.Context, op, system, user string) (string, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxResponseTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", p.wrap(op, err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Provider: "openai", Op: op, Kind: KindParse, Err: errors.New("no choices in response")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) wrap(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Provider: "openai", Op: op, Kind: kindForStatus(apiErr.HTTPStatusCode), Err: err}
	}
	return &Error{Provider: "openai", Op: op, Kind: KindTransport, Err: err}
}
