package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

type Store struct {
	client *firestore.Client
}

var _ domain.ConversationStore = (*Store)(nil)

// NewStore creates a Firestore store.
// Uses the project passed (KIN_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) conversationsCol() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Store) conversationDoc(id domain.ConversationID) *firestore.DocumentRef {
	return s.conversationsCol().Doc(string(id))
}

func (s *Store) messagesCol(id domain.ConversationID) *firestore.CollectionRef {
	return s.conversationDoc(id).Collection("messages")
}

// messageDocRef names messages by zero-padded sequence so doc ids sort like the log.
func (s *Store) messageDocRef(id domain.ConversationID, seq int64) *firestore.DocumentRef {
	return s.messagesCol(id).Doc(fmt.Sprintf("%010d", seq))
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type conversationDoc struct {
	UserID       string    `firestore:"user_id"`
	PersonaID    string    `firestore:"persona_id"`
	CreatedAt    time.Time `firestore:"created_at"`
	MessageCount int64     `firestore:"message_count"`
}

type messageDoc struct {
	Seq       int64     `firestore:"seq"`
	Role      string    `firestore:"role"`
	Content   string    `firestore:"content"`
	Timestamp time.Time `firestore:"timestamp"`
}

func (d conversationDoc) toDomain(id domain.ConversationID) *domain.Conversation {
	return &domain.Conversation{
		ID:        id,
		PersonaID: domain.PersonaID(d.PersonaID),
		UserID:    domain.UserID(d.UserID),
		CreatedAt: d.CreatedAt,
		Messages:  []domain.Message{},
	}
}

func (d messageDoc) toDomain() domain.Message {
	return domain.Message{
		Role:      domain.Role(d.Role),
		Content:   d.Content,
		Timestamp: d.Timestamp,
	}
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) GetOrCreate(
	ctx context.Context,
	id domain.ConversationID,
	personaID domain.PersonaID,
	userID domain.UserID,
	createdAt domain.Timestamp,
) (*domain.Conversation, error) {
	ref := s.conversationDoc(id)

	var created bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false
		_, err := tx.Get(ref)
		if err == nil {
			return nil
		}
		if !isNotFound(err) {
			return err
		}
		created = true
		return tx.Create(ref, conversationDoc{
			UserID:    string(userID),
			PersonaID: string(personaID),
			CreatedAt: createdAt,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("firestore GetOrCreate: %w", err)
	}

	if created {
		snap, err := ref.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore GetOrCreate reload: %w", err)
		}
		var doc conversationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore GetOrCreate decode: %w", err)
		}
		return doc.toDomain(id), nil
	}

	return s.Get(ctx, id)
}

// Append reserves the next sequence number and writes the message in one transaction.
func (s *Store) Append(ctx context.Context, id domain.ConversationID, msg domain.Message) error {
	ref := s.conversationDoc(id)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
			}
			return err
		}

		var doc conversationDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode conversationDoc: %w", err)
		}

		seq := doc.MessageCount
		if err := tx.Create(s.messageDocRef(id, seq), messageDoc{
			Seq:       seq,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}); err != nil {
			return err
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "message_count", Value: seq + 1},
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("firestore Append: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	snap, err := s.conversationDoc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore Get: %w", err)
	}

	var doc conversationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore Get decode: %w", err)
	}

	conv := doc.toDomain(id)

	iter := s.messagesCol(id).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	for {
		msnap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore Get messages: %w", err)
		}

		var mdoc messageDoc
		if err := msnap.DataTo(&mdoc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}
		conv.Messages = append(conv.Messages, mdoc.toDomain())
	}

	return conv, nil
}

// ListByUser orders by created_at, which matches insertion order for this store.
// The query needs a composite index on the conversations collection:
// user_id ASC, created_at ASC. Without it Firestore answers FailedPrecondition.
func (s *Store) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.ConversationSummary, error) {
	q := s.conversationsCol().
		Where("user_id", "==", string(userID)).
		OrderBy("created_at", firestore.Asc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []domain.ConversationSummary{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListByUser: %w", err)
		}

		var doc conversationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode conversationDoc: %w", err)
		}

		id := domain.ConversationID(snap.Ref.ID)
		last, err := s.lastMessage(ctx, id)
		if err != nil {
			return nil, err
		}

		out = append(out, domain.ConversationSummary{
			ID:           id,
			PersonaID:    domain.PersonaID(doc.PersonaID),
			CreatedAt:    doc.CreatedAt,
			LastMessage:  last,
			MessageCount: int(doc.MessageCount),
		})
	}
	return out, nil
}

func (s *Store) lastMessage(ctx context.Context, id domain.ConversationID) (*domain.Message, error) {
	iter := s.messagesCol(id).OrderBy("seq", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("firestore lastMessage: %w", err)
	}

	var doc messageDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode messageDoc: %w", err)
	}
	m := doc.toDomain()
	return &m, nil
}

// Delete removes the message subcollection first, then the conversation itself.
func (s *Store) Delete(ctx context.Context, id domain.ConversationID) error {
	ref := s.conversationDoc(id)

	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore Delete: %w", err)
	}

	bw := s.client.BulkWriter(ctx)

	iter := s.messagesCol(id).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			bw.End()
			return fmt.Errorf("firestore Delete messages: %w", err)
		}
		if _, err := bw.Delete(snap.Ref); err != nil {
			bw.End()
			return fmt.Errorf("firestore Delete message %s: %w", snap.Ref.ID, err)
		}
	}
	bw.End()

	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("firestore Delete: %w", err)
	}
	return nil
}
