package llm

import (
	"strings"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

// splitSystem separates system turns (joined into one instruction) from the chat history.
// Providers with a dedicated system field use this; OpenAI-style providers send turns as-is.
func splitSystem(turns []domain.Turn) (string, []domain.Turn) {
	var (
		system []string
		rest   = make([]domain.Turn, 0, len(turns))
	)
	for _, t := range turns {
		if t.Role == domain.RoleSystem {
			system = append(system, t.Content)
			continue
		}
		rest = append(rest, t)
	}
	return strings.Join(system, "\n\n"), rest
}

// lastUserContent returns the newest user turn, or "" if there is none.
func lastUserContent(turns []domain.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == domain.RoleUser {
			return turns[i].Content
		}
	}
	return ""
}
