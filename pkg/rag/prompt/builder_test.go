package prompt

import (
	"strings"
	"testing"

	"ragbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrdering(t *testing.T) {
	b := NewBuilder("answer from context", 0, 0)

	history := []store.Turn{
		{Role: store.RoleUser, Content: "earlier question"},
		{Role: store.RoleAssistant, Content: "earlier answer"},
	}
	candidates := []store.Candidate{
		{ChunkID: "doc#0000", Content: "passage one", Score: 0.9},
		{ChunkID: "doc#0001", Content: "passage two", Score: 0.5},
	}

	messages := b.Build("current question", candidates, history)

	require.Len(t, messages, 4)
	assert.Equal(t, store.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "answer from context")
	assert.Contains(t, messages[0].Content, "[1] passage one")
	assert.Contains(t, messages[0].Content, "[2] passage two")
	assert.Equal(t, "earlier question", messages[1].Content)
	assert.Equal(t, "earlier answer", messages[2].Content)
	assert.Equal(t, store.RoleUser, messages[3].Role)
	assert.Equal(t, "current question", messages[3].Content)
}

func TestBuildNoCandidates(t *testing.T) {
	b := NewBuilder("sys", 0, 0)
	messages := b.Build("q", nil, nil)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "(no relevant passages found)")
}

func TestCandidateBudgetDropsLeastRelevantFirst(t *testing.T) {
	b := NewBuilder("sys", 25, 0)
	candidates := []store.Candidate{
		{ChunkID: "a", Content: strings.Repeat("x", 20), Score: 0.9},
		{ChunkID: "b", Content: strings.Repeat("y", 20), Score: 0.8},
		{ChunkID: "c", Content: strings.Repeat("z", 20), Score: 0.7},
	}

	kept := b.fitCandidates(candidates)
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].ChunkID)
}

func TestTopCandidateKeptEvenOverBudget(t *testing.T) {
	b := NewBuilder("sys", 5, 0)
	candidates := []store.Candidate{
		{ChunkID: "a", Content: strings.Repeat("x", 50), Score: 0.9},
	}

	kept := b.fitCandidates(candidates)
	require.Len(t, kept, 1)
}

func TestHistoryBudgetDropsOldestFirst(t *testing.T) {
	b := NewBuilder("sys", 0, 25)
	history := []store.Turn{
		{Role: store.RoleUser, Content: strings.Repeat("a", 20)},
		{Role: store.RoleAssistant, Content: strings.Repeat("b", 20)},
		{Role: store.RoleUser, Content: strings.Repeat("c", 20)},
	}

	kept := b.fitHistory(history)
	require.Len(t, kept, 1)
	// The most recent turn survives.
	assert.Equal(t, strings.Repeat("c", 20), kept[0].Content)
}

func TestHistoryKeptOldestFirstWithinBudget(t *testing.T) {
	b := NewBuilder("sys", 0, 45)
	history := []store.Turn{
		{Role: store.RoleUser, Content: strings.Repeat("a", 20)},
		{Role: store.RoleAssistant, Content: strings.Repeat("b", 20)},
		{Role: store.RoleUser, Content: strings.Repeat("c", 20)},
	}

	kept := b.fitHistory(history)
	require.Len(t, kept, 2)
	assert.Equal(t, strings.Repeat("b", 20), kept[0].Content)
	assert.Equal(t, strings.Repeat("c", 20), kept[1].Content)
}

func TestNewestTurnKeptEvenOverBudget(t *testing.T) {
	b := NewBuilder("sys", 0, 5)
	history := []store.Turn{
		{Role: store.RoleUser, Content: strings.Repeat("a", 50)},
	}

	kept := b.fitHistory(history)
	require.Len(t, kept, 1)
}
