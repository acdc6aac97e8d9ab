package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient talks to any OpenAI-compatible chat/completions endpoint; Groq by default.
type GroqClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type GroqOption func(*GroqClient)

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(u string) GroqOption {
	return func(c *GroqClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) GroqOption {
	return func(c *GroqClient) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func NewGroqClient(apiKey string, opts ...GroqOption) *GroqClient {
	c := &GroqClient{
		apiKey:     apiKey,
		baseURL:    DefaultGroqBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	TopP        float32       `json:"top_p"`
	MaxTokens   int32         `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

var errMissingGroqKey = errors.New("GROQ_API_KEY is not set")

func (c *GroqClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", errMissingGroqKey
	}

	body := chatCompletionRequest{
		Model:       req.Model,
		Messages:    make([]chatMessage, 0, len(req.Turns)),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
	}
	for _, t := range req.Turns {
		body.Messages = append(body.Messages, chatMessage{Role: string(t.Role), Content: t.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("groq: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("groq: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("groq: malformed response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("groq: response has no choices")
	}

	return out.Choices[0].Message.Content, nil
}
