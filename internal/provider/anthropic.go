package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicProvider answers through Anthropic's Messages API. Calls are
// paced: free-tier keys reject bursts well under the worker-pool ceiling.
type AnthropicProvider struct {
	ops
	client anthropic.Client
	config Config
}

// NewAnthropicProvider creates an Anthropic provider. The API key is required.
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	p := &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		config: config,
	}
	p.ops = ops{name: "anthropic", maxTexts: config.MaxFilterTexts, complete: p.completion}
	return p, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// RequiresPacing reports that calls need mandatory inter-call spacing.
func (p *AnthropicProvider) RequiresPacing() bool { return true }

// IsAvailable reports whether the provider is configured. Reachability is
// proven by the first real call, which falls back cleanly on failure.
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	return p.config.APIKey != ""
}

func (p *AnthropicProvider) completion(ctx context.Context, op, system, user string) (string, error) {
	model := p.config.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxResponseTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", p.wrap(op, err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", &Error{Provider: "anthropic", Op: op, Kind: KindParse, Err: errors.New("no text content in response")}
}

func (p *AnthropicProvider) wrap(op string, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &Error{Provider: "anthropic", Op: op, Kind: kindForStatus(apiErr.StatusCode), Err: err}
	}
	return &Error{Provider: "anthropic", Op: op, Kind: KindTransport, Err: err}
}
