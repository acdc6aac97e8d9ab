package domain

// Message is one immutable turn in a conversation log (user or assistant).
type Message struct {
	Role      Role
	Content   string
	Timestamp Timestamp
}

// Conversation is an append-only message log owned by one user and bound to one persona.
type Conversation struct {
	ID        ConversationID
	PersonaID PersonaID
	UserID    UserID
	CreatedAt Timestamp
	Messages  []Message
}

// Clone returns a deep copy so callers never share the store's message slice.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	return &out
}

// LastMessage returns the newest message, or nil for an empty log.
func (c *Conversation) LastMessage() *Message {
	if c == nil || len(c.Messages) == 0 {
		return nil
	}
	m := c.Messages[len(c.Messages)-1]
	return &m
}

// Summary builds the listing view of the conversation.
func (c *Conversation) Summary() ConversationSummary {
	return ConversationSummary{
		ID:           c.ID,
		PersonaID:    c.PersonaID,
		CreatedAt:    c.CreatedAt,
		LastMessage:  c.LastMessage(),
		MessageCount: len(c.Messages),
	}
}

// ConversationSummary is what a user's conversation listing shows.
type ConversationSummary struct {
	ID           ConversationID
	PersonaID    PersonaID
	CreatedAt    Timestamp
	LastMessage  *Message
	MessageCount int
}

// Persona is a fixed communication style plus the system prompt that drives it.
type Persona struct {
	ID                 PersonaID
	Name               string
	Description        string
	Traits             []string
	Tone               string
	CommunicationStyle string
	SystemPrompt       string
}
