package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/kin-agent/internal/app/persona"
	"github.com/PabloGalante/kin-agent/internal/domain"
	"github.com/PabloGalante/kin-agent/internal/observability"
)

type Service struct {
	llm      domain.LLMClient
	store    domain.ConversationStore
	personas *persona.Registry
	provider string
	model    string
	now      func() time.Time
	newID    func() string
	turns    *turnLocks
}

type Option func(*Service)

// WithModel sets the fixed model identifier sent with every completion.
func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// WithProvider names the provider in upstream errors and logs.
func WithProvider(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.provider = name
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewService(
	llm domain.LLMClient,
	store domain.ConversationStore,
	personas *persona.Registry,
	opts ...Option,
) *Service {
	s := &Service{
		llm:      llm,
		store:    store,
		personas: personas,
		provider: "llm",
		model:    DefaultModel,
		now:      time.Now,
		newID:    uuid.NewString,
		turns:    newTurnLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChatInput is one user turn. Nil (or empty) UserID / ConversationID mean
// "absent" and trigger a fresh random identifier.
type ChatInput struct {
	UserID         *domain.UserID
	ConversationID *domain.ConversationID
	PersonaID      domain.PersonaID
	Message        string
}

type ChatOutput struct {
	Reply          string
	ConversationID domain.ConversationID
	PersonaID      domain.PersonaID
	UserID         domain.UserID
}

// Chat records the user message, asks the provider for a reply using the
// persona prompt plus the recent window, and records the reply.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	var userID domain.UserID
	if in.UserID != nil && *in.UserID != "" {
		userID = *in.UserID
	} else {
		userID = domain.UserID(s.newID())
	}

	var convID domain.ConversationID
	if in.ConversationID != nil && *in.ConversationID != "" {
		convID = *in.ConversationID
	} else {
		convID = domain.ConversationID(s.newID())
	}

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", convID,
		"user_id", userID,
		"persona_id", in.PersonaID,
	)

	if in.Message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	p, err := s.personas.Get(in.PersonaID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid persona %q", domain.ErrInvalidInput, in.PersonaID)
	}

	log.Info("chat turn started")

	// Once dispatched, a turn runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	unlock := s.turns.lock(convID)
	defer unlock()

	if _, err := s.store.GetOrCreate(ctx, convID, p.ID, userID, s.now()); err != nil {
		log.Error("failed to get or create conversation", "error", err)
		return nil, err
	}

	userMsg := domain.Message{
		Role:      domain.RoleUser,
		Content:   in.Message,
		Timestamp: s.now(),
	}
	if err := s.store.Append(ctx, convID, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	conv, err := s.store.Get(ctx, convID)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	req := BuildCompletionRequest(s.model, p, conv.Messages)

	start := time.Now()
	reply, err := s.llm.Complete(ctx, req)
	if err != nil {
		// The user message stays recorded; the conversation ends with an unanswered turn.
		log.Error("completion failed", "provider", s.provider, "error", err)
		return nil, &domain.UpstreamError{Provider: s.provider, Err: err}
	}
	log.Info("completion received",
		"provider", s.provider,
		"window", len(req.Turns)-1,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	agentMsg := domain.Message{
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: s.now(),
	}
	if err := s.store.Append(ctx, convID, agentMsg); err != nil {
		log.Error("failed to append assistant message", "error", err)
		return nil, err
	}

	log.Info("chat turn completed")

	return &ChatOutput{
		Reply:          reply,
		ConversationID: convID,
		PersonaID:      p.ID,
		UserID:         userID,
	}, nil
}

// GetConversation returns the full history plus the persona it was created with.
func (s *Service) GetConversation(
	ctx context.Context,
	id domain.ConversationID,
) (*domain.Conversation, domain.Persona, error) {
	log := observability.LoggerFromContext(ctx).With("conversation_id", id)

	conv, err := s.store.Get(ctx, id)
	if err != nil {
		log.Info("conversation lookup failed", "error", err)
		return nil, domain.Persona{}, err
	}

	p, err := s.personas.Get(conv.PersonaID)
	if err != nil {
		log.Error("conversation references unknown persona", "persona_id", conv.PersonaID)
		return nil, domain.Persona{}, fmt.Errorf("conversation %s: %w", id, err)
	}

	log.Info("fetched conversation", "message_count", len(conv.Messages))
	return conv, p, nil
}

func (s *Service) ListConversations(
	ctx context.Context,
	userID domain.UserID,
) ([]domain.ConversationSummary, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list conversations", "error", err)
		return nil, err
	}
	if list == nil {
		list = []domain.ConversationSummary{}
	}

	log.Info("listed conversations", "count", len(list))
	return list, nil
}

func (s *Service) DeleteConversation(ctx context.Context, id domain.ConversationID) error {
	log := observability.LoggerFromContext(ctx).With("conversation_id", id)

	unlock := s.turns.lock(id)
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		log.Info("delete failed", "error", err)
		return err
	}

	log.Info("conversation deleted")
	return nil
}

// Personas exposes the registry's public metadata in definition order.
func (s *Service) Personas() []persona.Info {
	return s.personas.List()
}
