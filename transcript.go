package studyassist

import "sync"

// Transcript is the append-only sequence of chat messages rendered on the
// page. Messages keep their insertion order; starting a new session clears
// the whole sequence rather than editing it.
type Transcript struct {
	mu       sync.RWMutex
	messages []*Message
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message and returns a handle to it. The handle is how a
// summarize placeholder is later resolved in place: each submission owns
// its own handle, so overlapping submissions cannot touch each other's
// output.
func (tr *Transcript) Append(role Role, text string) *Message {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	msg := &Message{Role: role, Text: text}
	tr.messages = append(tr.messages, msg)
	return msg
}

// Clear drops every message. Used when a new session replaces the old one.
func (tr *Transcript) Clear() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.messages = nil
}

// Messages returns a snapshot of the current sequence in insertion order.
func (tr *Transcript) Messages() []*Message {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	out := make([]*Message, len(tr.messages))
	copy(out, tr.messages)
	return out
}

// Len returns the number of messages in the transcript
func (tr *Transcript) Len() int {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return len(tr.messages)
}
