package contract

import (
	"context"

	"ragbot-be/pkg/store"
)

// ConversationRepository holds per-session bounded conversation history.
// Unknown sessions read as empty history, never as an error. Implementations
// enforce the FIFO turn bound on append.
type ConversationRepository interface {
	// Append inserts turns at the tail, evicting from the head when the
	// session exceeds its bound.
	Append(ctx context.Context, sessionID string, turns ...store.Turn) error

	// History returns the session's turns oldest first.
	History(ctx context.Context, sessionID string) ([]store.Turn, error)
}
