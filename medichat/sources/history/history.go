// Package history keeps bounded, per-session conversation history in memory.
package history

import (
	"medichat/medichat/services/llm"
	"time"
)

// Message is one stored conversation turn. The system persona is never
// stored; it is injected when the prompt is built.
type Message struct {
	Role      llm.Role  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History is an insertion-ordered buffer holding at most Max messages.
// It is not safe for concurrent use; Store serializes access per session.
type History struct {
	max      int
	messages []Message
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = 1
	}
	return &History{max: max}
}

// Append adds a message stamped with the current UTC time. It does not
// trim; call Trim once the turn is complete.
func (h *History) Append(role llm.Role, content string) Message {
	msg := Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
	h.messages = append(h.messages, msg)
	return msg
}

// Trim drops the oldest messages until at most Max remain.
func (h *History) Trim() {
	if over := len(h.messages) - h.max; over > 0 {
		h.messages = append([]Message(nil), h.messages[over:]...)
	}
}

func (h *History) Messages() []Message {
	return append([]Message(nil), h.messages...)
}

// Prompt returns the persona followed by every stored message, reduced to
// role and content.
func (h *History) Prompt(persona string) []llm.Message {
	out := make([]llm.Message, 0, len(h.messages)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: persona})
	for _, m := range h.messages {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func (h *History) Len() int {
	return len(h.messages)
}

func (h *History) Max() int {
	return h.max
}

func (h *History) Reset() {
	h.messages = nil
}
