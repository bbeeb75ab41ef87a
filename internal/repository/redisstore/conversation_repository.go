package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/repository/contract"
	"ragbot-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const sessionTTL = 1 * time.Hour

// ConversationRepository keeps bounded per-session histories in Redis.
// Each session is a list of JSON-encoded turns; RPUSH + LTRIM enforce the
// FIFO bound server side, so concurrent appends never exceed the cap.
type ConversationRepository struct {
	client   *redis.Client
	maxTurns int
}

var _ contract.ConversationRepository = &ConversationRepository{}

func NewConversationRepository(client *redis.Client, maxTurns int) *ConversationRepository {
	return &ConversationRepository{
		client:   client,
		maxTurns: maxTurns,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s:turns", sessionID)
}

func (r *ConversationRepository) Append(ctx context.Context, sessionID string, turns ...store.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	values := make([]interface{}, len(turns))
	for i, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return err
		}
		values[i] = data
	}

	key := sessionKey(sessionID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if r.maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-r.maxTurns), -1)
	}
	pipe.Expire(ctx, key, sessionTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Wrapf(apperrors.ErrSessionStore, "redis append: %v", err)
	}
	return nil
}

func (r *ConversationRepository) History(ctx context.Context, sessionID string) ([]store.Turn, error) {
	raw, err := r.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSessionStore, "redis history: %v", err)
	}

	turns := make([]store.Turn, 0, len(raw))
	for _, item := range raw {
		var turn store.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
