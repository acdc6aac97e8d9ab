package domain

import "context"

// LLMClient defines how the core application interacts with a completion provider.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Turn is a single {role, content} entry sent to the provider.
type Turn struct {
	Role    Role
	Content string
}

// CompletionRequest carries everything a provider needs for one non-streaming completion.
type CompletionRequest struct {
	Model       string
	Turns       []Turn // system turn first, then history oldest to newest
	Temperature float32
	TopP        float32
	MaxTokens   int32
	Stream      bool
}

// ConversationStore owns every Conversation record.
// Implementations must make each call atomic with respect to a conversation id.
type ConversationStore interface {
	// GetOrCreate returns the existing record or creates an empty one with the given id verbatim.
	// createdAt is only used when the record is new.
	GetOrCreate(ctx context.Context, id ConversationID, personaID PersonaID, userID UserID, createdAt Timestamp) (*Conversation, error)
	// Append adds msg to the end of the log. Returns ErrNotFound if the conversation does not exist.
	Append(ctx context.Context, id ConversationID, msg Message) error
	Get(ctx context.Context, id ConversationID) (*Conversation, error)
	// ListByUser returns summaries in the store's insertion order.
	ListByUser(ctx context.Context, userID UserID) ([]ConversationSummary, error)
	Delete(ctx context.Context, id ConversationID) error
}
