package conversation

import "github.com/PabloGalante/kin-agent/internal/domain"

const (
	// HistoryWindow is how many of the newest messages go into each completion.
	HistoryWindow = 10

	DefaultModel       = "llama3-70b-8192"
	DefaultTemperature = float32(0.7)
	DefaultTopP        = float32(0.9)
	DefaultMaxTokens   = int32(1000)
)

// BuildCompletionRequest builds one system turn followed by the last
// HistoryWindow messages, oldest first. Older messages are dropped.
func BuildCompletionRequest(model string, p domain.Persona, history []domain.Message) domain.CompletionRequest {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	turns := make([]domain.Turn, 0, len(history)+1)
	turns = append(turns, domain.Turn{Role: domain.RoleSystem, Content: p.SystemPrompt})
	for _, m := range history {
		switch m.Role {
		case domain.RoleUser, domain.RoleAssistant:
			turns = append(turns, domain.Turn{Role: m.Role, Content: m.Content})
		}
	}

	return domain.CompletionRequest{
		Model:       model,
		Turns:       turns,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
		Stream:      false,
	}
}
