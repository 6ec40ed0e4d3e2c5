package mock

import (
	"context"
	"sync"

	"github.com/docentlabs/docent/ai"
)

// MockGenerator is a test double for ai.Generator.
// By default it echoes the last human message; inject GenerateFunc for
// scripted replies or failures.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, system string, messages []ai.Message) (string, error)

	mu        sync.Mutex
	callCount int
	lastCall  []ai.Message
}

// NewMockGenerator creates a mock generator with default echo behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns the injected reply, or echoes the final human message.
func (m *MockGenerator) Generate(ctx context.Context, system string, messages []ai.Message) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastCall = append([]ai.Message(nil), messages...)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, messages)
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleHuman {
			return messages[i].Text, nil
		}
	}
	return "", nil
}

// CallCount returns the number of Generate invocations.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastMessages returns the message history passed to the most recent call.
func (m *MockGenerator) LastMessages() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// Reset clears call state and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastCall = nil
	m.GenerateFunc = nil
}
