package store

import "time"

// Role constants for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultSessionID is used when the client does not supply a session id.
const DefaultSessionID = "default"

// Turn is one message in a conversation history. Immutable once appended.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the bounded per-session conversation state held by a
// ConversationRepository.
type Session struct {
	ID    string `json:"id"`
	Turns []Turn `json:"turns"`
}

// Append inserts turns at the tail and evicts from the head until the
// history holds at most maxTurns entries. FIFO, strict bound.
func (s *Session) Append(maxTurns int, turns ...Turn) {
	s.Turns = append(s.Turns, turns...)
	if maxTurns > 0 && len(s.Turns) > maxTurns {
		s.Turns = s.Turns[len(s.Turns)-maxTurns:]
	}
}

// Candidate is a ranked retrieval result, ephemeral per query.
type Candidate struct {
	ChunkID string  `json:"chunk_id"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}
