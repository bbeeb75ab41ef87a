package memory

import (
	"context"
	"fmt"
	"testing"

	"ragbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryUnknownSessionIsEmpty(t *testing.T) {
	r := NewConversationRepository(10)

	turns, err := r.History(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAppendEnforcesFIFOBound(t *testing.T) {
	r := NewConversationRepository(10)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		err := r.Append(ctx, "s1", store.Turn{Role: store.RoleUser, Content: fmt.Sprintf("msg-%d", i)})
		require.NoError(t, err)
	}

	turns, err := r.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 10)
	assert.Equal(t, "msg-5", turns[0].Content)
	assert.Equal(t, "msg-14", turns[9].Content)
}

func TestSessionsAreIsolated(t *testing.T) {
	r := NewConversationRepository(10)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, "s1", store.Turn{Role: store.RoleUser, Content: "for s1"}))
	require.NoError(t, r.Append(ctx, "s2", store.Turn{Role: store.RoleUser, Content: "for s2"}))

	t1, err := r.History(ctx, "s1")
	require.NoError(t, err)
	t2, err := r.History(ctx, "s2")
	require.NoError(t, err)

	require.Len(t, t1, 1)
	require.Len(t, t2, 1)
	assert.Equal(t, "for s1", t1[0].Content)
	assert.Equal(t, "for s2", t2[0].Content)
}

func TestHistoryReturnsCopy(t *testing.T) {
	r := NewConversationRepository(10)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, "s1", store.Turn{Role: store.RoleUser, Content: "original"}))

	turns, err := r.History(ctx, "s1")
	require.NoError(t, err)
	turns[0].Content = "mutated"

	again, err := r.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}
