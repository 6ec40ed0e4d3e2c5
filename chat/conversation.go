package chat

import (
	"sync"
	"time"

	"github.com/docentlabs/docent/core"
)

// Conversation is an append-only turn history. Turns are never edited or
// removed; starting over requires an explicit Reset.
type Conversation struct {
	mu    sync.RWMutex
	turns []core.Turn
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// AppendHuman records a user message.
func (c *Conversation) AppendHuman(text string) {
	c.append(core.Turn{Speaker: core.SpeakerHuman, Text: text, At: time.Now()})
}

// AppendAssistant records an assistant answer with its citations.
func (c *Conversation) AppendAssistant(text string, citations []core.Citation) {
	c.append(core.Turn{
		Speaker:   core.SpeakerAssistant,
		Text:      text,
		Citations: citations,
		At:        time.Now(),
	})
}

func (c *Conversation) append(turn core.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
}

// History returns a copy of all turns in order.
func (c *Conversation) History() []core.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Reset discards all turns.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}
