package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

type VertexClient struct {
	client *genai.Client
}

// NewVertexClient creates an LLMClient based on Vertex AI (Gemini).
func NewVertexClient(ctx context.Context, projectID, location string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("KIN_GCP_PROJECT and KIN_GCP_LOCATION must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{client: client}, nil
}

// Complete implements domain.LLMClient using Vertex AI.
func (v *VertexClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	// 1) System turn goes to SystemInstruction
	system, history := splitSystem(req.Turns)

	// 2) History (user / assistant) as conversation
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := genai.RoleUser
		if t.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, genai.Role(role)))
	}

	// 3) Model config (without genai.Ptr to avoid generic issues)
	temp := req.Temperature
	topP := req.TopP

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: req.MaxTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := v.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}

	return text, nil
}
