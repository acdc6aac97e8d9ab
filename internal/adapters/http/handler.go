package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/PabloGalante/kin-agent/internal/app/conversation"
	"github.com/PabloGalante/kin-agent/internal/app/persona"
	"github.com/PabloGalante/kin-agent/internal/domain"
	"github.com/PabloGalante/kin-agent/internal/observability"
)

type Server struct {
	svc     *conversation.Service
	version string
	now     func() time.Time
}

// NewServer serves every route at the root and again under /api.
func NewServer(svc *conversation.Service, version string) http.Handler {
	s := &Server{svc: svc, version: version, now: time.Now}

	mux := http.NewServeMux()
	s.routes(mux)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", mux))
	root.Handle("/", mux)

	return chainMiddlewares(root, withCORS, withLogging, withRequestID)
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /personas", s.handleListPersonas)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /conversation/{id}", s.handleGetConversation)
	mux.HandleFunc("DELETE /conversation/{id}", s.handleDeleteConversation)
	mux.HandleFunc("GET /conversations/{user_id}", s.handleListConversations)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Known paths with the wrong verb get a JSON 405 instead of the mux's plain text.
	for _, p := range []string{"/personas", "/chat", "/conversation/{id}", "/conversations/{user_id}", "/health"} {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) { methodNotAllowed(w) })
	}
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	UserID         *string `json:"user_id,omitempty"`
	Message        string  `json:"message"`
	Persona        *string `json:"persona,omitempty"`
	PersonaID      *string `json:"persona_id,omitempty"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Persona        string `json:"persona"`
	UserID         string `json:"user_id"`
}

type personaInfoResponse struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Traits             []string `json:"traits"`
	Tone               string   `json:"tone"`
	CommunicationStyle string   `json:"communication_style"`
}

type personasResponse struct {
	Personas orderedPersonas `json:"personas"`
}

type personaEntry struct {
	id   string
	info personaInfoResponse
}

// orderedPersonas encodes as a JSON object whose keys keep slice order.
type orderedPersonas []personaEntry

func (o orderedPersonas) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.info)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type messageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type conversationResponse struct {
	ID        string            `json:"id"`
	Persona   string            `json:"persona"`
	UserID    string            `json:"user_id"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []messageResponse `json:"messages"`
}

type getConversationResponse struct {
	Conversation conversationResponse `json:"conversation"`
	PersonaInfo  personaInfoResponse  `json:"persona_info"`
}

type summaryResponse struct {
	ID           string           `json:"id"`
	Persona      string           `json:"persona"`
	CreatedAt    time.Time        `json:"created_at"`
	LastMessage  *messageResponse `json:"last_message"`
	MessageCount int              `json:"message_count"`
}

type listConversationsResponse struct {
	Conversations []summaryResponse `json:"conversations"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	list := s.svc.Personas()

	resp := personasResponse{Personas: make(orderedPersonas, 0, len(list))}
	for _, info := range list {
		resp.Personas = append(resp.Personas, personaEntry{
			id:   string(info.ID),
			info: toPersonaInfoResponse(info),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	in := conversation.ChatInput{
		PersonaID: persona.DefaultID,
		Message:   req.Message,
	}
	switch {
	case req.PersonaID != nil:
		in.PersonaID = domain.PersonaID(*req.PersonaID)
	case req.Persona != nil:
		in.PersonaID = domain.PersonaID(*req.Persona)
	}
	if req.UserID != nil {
		id := domain.UserID(*req.UserID)
		in.UserID = &id
	}
	if req.ConversationID != nil {
		id := domain.ConversationID(*req.ConversationID)
		in.ConversationID = &id
	}

	out, err := s.svc.Chat(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       out.Reply,
		ConversationID: string(out.ConversationID),
		Persona:        string(out.PersonaID),
		UserID:         string(out.UserID),
	})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := domain.ConversationID(r.PathValue("id"))

	conv, p, err := s.svc.GetConversation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getConversationResponse{
		Conversation: toConversationResponse(conv),
		PersonaInfo:  toPersonaInfoResponse(persona.PublicInfo(p)),
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("user_id"))

	list, err := s.svc.ListConversations(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := listConversationsResponse{Conversations: make([]summaryResponse, 0, len(list))}
	for _, sum := range list {
		resp.Conversations = append(resp.Conversations, toSummaryResponse(sum))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := domain.ConversationID(r.PathValue("id"))

	if err := s.svc.DeleteConversation(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Conversation deleted successfully",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now(),
		Version:   s.version,
	})
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toPersonaInfoResponse(info persona.Info) personaInfoResponse {
	traits := info.Traits
	if traits == nil {
		traits = []string{}
	}
	return personaInfoResponse{
		Name:               info.Name,
		Description:        info.Description,
		Traits:             traits,
		Tone:               info.Tone,
		CommunicationStyle: info.CommunicationStyle,
	}
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

func toConversationResponse(c *domain.Conversation) conversationResponse {
	msgs := make([]messageResponse, 0, len(c.Messages))
	for _, m := range c.Messages {
		msgs = append(msgs, toMessageResponse(m))
	}
	return conversationResponse{
		ID:        string(c.ID),
		Persona:   string(c.PersonaID),
		UserID:    string(c.UserID),
		CreatedAt: c.CreatedAt,
		Messages:  msgs,
	}
}

func toSummaryResponse(sum domain.ConversationSummary) summaryResponse {
	var last *messageResponse
	if sum.LastMessage != nil {
		m := toMessageResponse(*sum.LastMessage)
		last = &m
	}
	return summaryResponse{
		ID:           string(sum.ID),
		Persona:      string(sum.PersonaID),
		CreatedAt:    sum.CreatedAt,
		LastMessage:  last,
		MessageCount: sum.MessageCount,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		badRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, "Conversation not found")
	case errors.As(err, &upstream):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": upstream.Error(),
		})
	default:
		internalError(w, r, err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
