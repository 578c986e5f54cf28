package assistant

// Roles for chat history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat entry.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// History is the ordered, append-only chat log for one session. It is not
// safe for concurrent use; the owning session serializes access.
type History struct {
	messages []Message
}

// Append adds one entry to the log.
func (h *History) Append(role, text string) {
	h.messages = append(h.messages, Message{Role: role, Text: text})
}

// Clear truncates the log to empty.
func (h *History) Clear() {
	h.messages = nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.messages)
}

// Messages returns a copy of the full log in order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Last returns a copy of up to n most recent entries, oldest first.
func (h *History) Last(n int) []Message {
	if n <= 0 || n > len(h.messages) {
		n = len(h.messages)
	}
	out := make([]Message, n)
	copy(out, h.messages[len(h.messages)-n:])
	return out
}
