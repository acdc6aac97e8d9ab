package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

type AnthropicClient struct {
	client anthropic.Client
}

// NewAnthropicClient builds a client for the given key. An empty key defers
// the failure to the first Complete call.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *AnthropicClient {
	if apiKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...)}
}

func (a *AnthropicClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	system, history := splitSystem(req.Turns)

	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, t := range history {
		if t.Role == domain.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    msgs,
		Temperature: anthropic.Float(float64(req.Temperature)),
		TopP:        anthropic.Float(float64(req.TopP)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(tb.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("anthropic returned empty text")
	}
	return out.String(), nil
}
