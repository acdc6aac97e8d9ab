package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

// ConversationStore is an in-memory implementation of domain.ConversationStore.
// It is NOT persistent; every record is lost when the process exits.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[domain.ConversationID]*domain.Conversation
	order         []domain.ConversationID // insertion order, for ListByUser
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domain.ConversationID]*domain.Conversation),
	}
}

var _ domain.ConversationStore = (*ConversationStore)(nil)

func (s *ConversationStore) GetOrCreate(
	_ context.Context,
	id domain.ConversationID,
	personaID domain.PersonaID,
	userID domain.UserID,
	createdAt domain.Timestamp,
) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, exists := s.conversations[id]; exists {
		return conv.Clone(), nil
	}

	conv := &domain.Conversation{
		ID:        id,
		PersonaID: personaID,
		UserID:    userID,
		CreatedAt: createdAt,
		Messages:  []domain.Message{},
	}
	s.conversations[id] = conv
	s.order = append(s.order, id)

	return conv.Clone(), nil
}

func (s *ConversationStore) Append(_ context.Context, id domain.ConversationID, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	conv.Messages = append(conv.Messages, msg)
	return nil
}

func (s *ConversationStore) Get(_ context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	return conv.Clone(), nil
}

func (s *ConversationStore) ListByUser(_ context.Context, userID domain.UserID) ([]domain.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.ConversationSummary{}
	for _, id := range s.order {
		conv := s.conversations[id]
		if conv.UserID == userID {
			result = append(result, conv.Summary())
		}
	}

	return result, nil
}

func (s *ConversationStore) Delete(_ context.Context, id domain.ConversationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	delete(s.conversations, id)
	s.order = slices.DeleteFunc(s.order, func(other domain.ConversationID) bool {
		return other == id
	})
	return nil
}
