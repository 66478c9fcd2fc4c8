package memory

import "github.com/seralind/toolloop/chat"

// Conversation is the ordered message log of one chat session.
//
// Append-only: entries are never reordered or mutated after insertion.
// Not safe for concurrent use; the request loop owns all writes.
type Conversation struct {
	msgs []chat.Message
}

// NewConversation starts a log, optionally seeded from a stored transcript.
func NewConversation(seed ...chat.Message) *Conversation {
	c := &Conversation{}
	c.msgs = append(c.msgs, seed...)
	return c
}

// Append adds messages to the end of the log in the given order.
func (c *Conversation) Append(msgs ...chat.Message) {
	c.msgs = append(c.msgs, msgs...)
}

// Snapshot returns a copy of the log. Later appends never show up in a
// snapshot already taken.
func (c *Conversation) Snapshot() []chat.Message {
	out := make([]chat.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *Conversation) Len() int { return len(c.msgs) }
