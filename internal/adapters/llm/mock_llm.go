package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

// MockLLM answers without any network call and remembers every request it saw.
type MockLLM struct {
	mu       sync.Mutex
	requests []domain.CompletionRequest
	err      error
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// FailWith makes every following Complete call return err.
func (m *MockLLM) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockLLM) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.Turns = append([]domain.Turn(nil), req.Turns...)
	m.requests = append(m.requests, req)

	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("I hear you. You said %q. Tell me a little more about how that feels.", lastUserContent(req.Turns)), nil
}

// Requests returns a copy of every request received so far.
func (m *MockLLM) Requests() []domain.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CompletionRequest(nil), m.requests...)
}

// LastRequest returns the newest request, if any.
func (m *MockLLM) LastRequest() (domain.CompletionRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return domain.CompletionRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}
