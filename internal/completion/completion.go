package completion

import "context"

// Turn is one prior conversation entry handed to the completion service.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"content"`
}

// Completer represents a connector to an external text completion service.
// History is capped by the caller; implementations must treat it as context
// only and never mutate it.
type Completer interface {
	Complete(ctx context.Context, system string, history []Turn, input string) (string, error)
}

// StaticCompleter simulates a completion service with a canned reply. Useful
// in development and tests.
type StaticCompleter struct {
	Reply string
}

// Complete returns the canned reply.
func (s StaticCompleter) Complete(_ context.Context, _ string, _ []Turn, _ string) (string, error) {
	return s.Reply, nil
}
