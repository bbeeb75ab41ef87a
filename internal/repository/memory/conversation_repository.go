package memory

import (
	"context"
	"sync"
	"time"

	"ragbot-be/internal/repository/contract"
	"ragbot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// ConversationRepository keeps bounded per-session histories in process
// memory. Idle sessions expire after an hour; expired entries are purged
// every ten minutes.
type ConversationRepository struct {
	cache    *cache.Cache
	maxTurns int
	mu       sync.Mutex
}

var _ contract.ConversationRepository = &ConversationRepository{}

func NewConversationRepository(maxTurns int) *ConversationRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache:    c,
		maxTurns: maxTurns,
	}
}

func (r *ConversationRepository) Append(ctx context.Context, sessionID string, turns ...store.Turn) error {
	// The read-modify-write below must not interleave across goroutines.
	r.mu.Lock()
	defer r.mu.Unlock()

	session := &store.Session{ID: sessionID}
	if x, found := r.cache.Get(sessionID); found {
		session = x.(*store.Session)
	}

	session.Append(r.maxTurns, turns...)
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return nil
}

func (r *ConversationRepository) History(ctx context.Context, sessionID string) ([]store.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(sessionID)
	if !found {
		// Unknown session is equivalent to empty history.
		return []store.Turn{}, nil
	}

	session := x.(*store.Session)
	// Copy so callers can never mutate stored turns.
	turns := make([]store.Turn, len(session.Turns))
	copy(turns, session.Turns)
	return turns, nil
}
