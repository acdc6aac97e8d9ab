package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/kin-agent/internal/adapters/http"
	"github.com/PabloGalante/kin-agent/internal/adapters/llm"
	"github.com/PabloGalante/kin-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/kin-agent/internal/app/conversation"
	"github.com/PabloGalante/kin-agent/internal/app/persona"
)

func newTestServer(t *testing.T) (http.Handler, *llm.MockLLM) {
	t.Helper()

	llmClient := llm.NewMockLLM()
	store := memory.NewConversationStore()
	svc := conversation.NewService(llmClient, store, persona.NewRegistry())

	return httpadapter.NewServer(svc, "1.0.0"), llmClient
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body=%s", w.Body.String())
	return v
}

type chatResp struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Persona        string `json:"persona"`
	UserID         string `json:"user_id"`
}

type convResp struct {
	Conversation struct {
		ID       string `json:"id"`
		Persona  string `json:"persona"`
		UserID   string `json:"user_id"`
		Messages []struct {
			Role      string    `json:"role"`
			Content   string    `json:"content"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"messages"`
	} `json:"conversation"`
	PersonaInfo map[string]any `json:"persona_info"`
}

type listResp struct {
	Conversations []struct {
		ID           string         `json:"id"`
		Persona      string         `json:"persona"`
		LastMessage  map[string]any `json:"last_message"`
		MessageCount int            `json:"message_count"`
	} `json:"conversations"`
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])

	ts, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestHealth_IndependentOfProvider(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.FailWith(errors.New("provider down"))

	w := do(t, srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListPersonas(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/personas", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]map[string]map[string]any](t, w)
	personas := body["personas"]
	require.Len(t, personas, 4)
	for _, id := range []string{"father", "mother", "uncle", "aunt"} {
		p, ok := personas[id]
		require.True(t, ok, id)
		assert.NotEmpty(t, p["name"])
		assert.NotEmpty(t, p["traits"])
		assert.NotEmpty(t, p["communication_style"])
		assert.NotContains(t, p, "system_prompt")
	}
}

func TestListPersonas_KeysInDefinitionOrder(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 10; i++ {
		w := do(t, srv, http.MethodGet, "/personas", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		var prev int
		for _, id := range []string{"father", "mother", "uncle", "aunt"} {
			idx := strings.Index(body, `"`+id+`":`)
			require.Greater(t, idx, prev, "%s out of order in %s", id, body)
			prev = idx
		}
	}
}

func TestChatThenGetConversation(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/chat", map[string]string{
		"user_id": "u1",
		"message": "I failed my exam",
		"persona": "mother",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	chat := decode[chatResp](t, w)
	assert.NotEmpty(t, chat.Response)
	assert.NotEmpty(t, chat.ConversationID)
	assert.Equal(t, "mother", chat.Persona)
	assert.Equal(t, "u1", chat.UserID)

	w = do(t, srv, http.MethodGet, "/conversation/"+chat.ConversationID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	conv := decode[convResp](t, w)
	assert.Equal(t, chat.ConversationID, conv.Conversation.ID)
	assert.Equal(t, "mother", conv.Conversation.Persona)
	assert.Equal(t, "u1", conv.Conversation.UserID)
	require.Len(t, conv.Conversation.Messages, 2)
	assert.Equal(t, "user", conv.Conversation.Messages[0].Role)
	assert.Equal(t, "I failed my exam", conv.Conversation.Messages[0].Content)
	assert.Equal(t, "assistant", conv.Conversation.Messages[1].Role)
	assert.Equal(t, chat.Response, conv.Conversation.Messages[1].Content)
	assert.Equal(t, "Mother", conv.PersonaInfo["name"])
}

func TestChat_GeneratesUserAndConversationIDs(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	chat := decode[chatResp](t, w)
	assert.NotEmpty(t, chat.UserID)
	assert.NotEmpty(t, chat.ConversationID)
	assert.NotEqual(t, chat.UserID, chat.ConversationID)
	assert.Equal(t, "father", chat.Persona)
}

func TestChat_EmptyMessageIs400(t *testing.T) {
	srv, mock := newTestServer(t)

	for _, body := range []map[string]string{
		{"message": ""},
		{"message": "", "persona": "grandparent"},
		{"message": "", "persona": "aunt", "user_id": "u", "conversation_id": "c"},
	} {
		w := do(t, srv, http.MethodPost, "/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "message is required")
	}
	assert.Empty(t, mock.Requests())
}

func TestChat_WhitespaceMessageIsAccepted(t *testing.T) {
	srv, mock := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/chat", map[string]string{"message": "   ", "user_id": "u1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	chat := decode[chatResp](t, w)
	require.Len(t, mock.Requests(), 1)

	w = do(t, srv, http.MethodGet, "/conversation/"+chat.ConversationID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	conv := decode[convResp](t, w)
	require.Len(t, conv.Conversation.Messages, 2)
	assert.Equal(t, "   ", conv.Conversation.Messages[0].Content)
}

func TestChat_UnknownPersonaIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/chat", map[string]string{"message": "hi", "persona_id": "grandparent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid persona")
}

func TestChat_MalformedBodyIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/chat", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_UpstreamFailureIs502WithProviderText(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.FailWith(errors.New("Invalid API Key"))

	w := do(t, srv, http.MethodPost, "/chat", map[string]string{
		"message":         "hello?",
		"conversation_id": "c-up",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Invalid API Key", decode[map[string]string](t, w)["error"])

	// the unanswered user message stays recorded
	w = do(t, srv, http.MethodGet, "/conversation/c-up", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[convResp](t, w).Conversation.Messages, 1)
}

func TestChat_ElevenMessagesWindowedToTen(t *testing.T) {
	srv, mock := newTestServer(t)

	for i := 0; i <= 10; i++ {
		w := do(t, srv, http.MethodPost, "/chat", map[string]string{
			"message":         fmt.Sprintf("note-%02d", i),
			"conversation_id": "c-long",
			"persona":         "uncle",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	req, ok := mock.LastRequest()
	require.True(t, ok)
	assert.LessOrEqual(t, len(req.Turns)-1, 10)
	for _, turn := range req.Turns[1:] {
		assert.NotEqual(t, "note-00", turn.Content)
		assert.NotEqual(t, "note-05", turn.Content)
	}
	assert.Equal(t, "note-10", req.Turns[len(req.Turns)-1].Content)
}

func TestDeleteConversation(t *testing.T) {
	srv, _ := newTestServer(t)

	chat := decode[chatResp](t, do(t, srv, http.MethodPost, "/chat", map[string]string{"message": "hi"}))

	w := do(t, srv, http.MethodDelete, "/conversation/"+chat.ConversationID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Conversation deleted successfully", decode[map[string]string](t, w)["message"])

	w = do(t, srv, http.MethodGet, "/conversation/"+chat.ConversationID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodDelete, "/conversation/"+chat.ConversationID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodDelete, "/conversation/never-existed", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListConversations(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []map[string]string{
		{"user_id": "alice", "message": "one", "persona": "father"},
		{"user_id": "bob", "message": "two", "persona": "mother"},
		{"user_id": "alice", "message": "three", "persona": "aunt"},
	} {
		require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/chat", body).Code)
	}

	w := do(t, srv, http.MethodGet, "/conversations/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decode[listResp](t, w)
	require.Len(t, list.Conversations, 2)
	assert.Equal(t, "father", list.Conversations[0].Persona)
	assert.Equal(t, "aunt", list.Conversations[1].Persona)
	for _, c := range list.Conversations {
		assert.Equal(t, 2, c.MessageCount)
		assert.Equal(t, "assistant", c.LastMessage["role"])
	}
}

func TestListConversations_UnknownUserIsEmptyArray(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/conversations/ghost", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"conversations":[]}`, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/chat", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = do(t, srv, http.MethodPost, "/conversation/abc", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodOptions, "/chat", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
