package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/constant"
	"ragbot-be/internal/dto"
	"ragbot-be/internal/entity"
	"ragbot-be/internal/repository/contract"
	"ragbot-be/internal/repository/memory"
	"ragbot-be/pkg/llm"
	"ragbot-be/pkg/rag/prompt"
	"ragbot-be/pkg/rag/retriever"
	"ragbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopLogger satisfies logger.ILogger for tests.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeLLM struct {
	expansion string
	answer    string
	chatErr   error
	chats     [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.chats = append(f.chats, history)
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.answer, nil
}

func (f *fakeLLM) Generate(ctx context.Context, p string, options ...llm.Option) (string, error) {
	if f.expansion == "" {
		return "[]", nil
	}
	return f.expansion, nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectorFor(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.vectorFor(text), nil
}

func (f *fakeEmbedder) vectorFor(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return []float32{1, 0, 0}
}

// cosineIndex is an in-memory stand-in for the pgvector repository.
type cosineIndex struct {
	entries map[string]*entity.IndexEntry
}

func newCosineIndex() *cosineIndex {
	return &cosineIndex{entries: map[string]*entity.IndexEntry{}}
}

func (x *cosineIndex) Upsert(ctx context.Context, entries []*entity.IndexEntry) error {
	for _, e := range entries {
		x.entries[e.ChunkID] = e
	}
	return nil
}

func (x *cosineIndex) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredEntry, error) {
	scored := make([]*contract.ScoredEntry, 0, len(x.entries))
	for _, e := range x.entries {
		scored = append(scored, &contract.ScoredEntry{Entry: e, Similarity: cosine(embedding, e.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Entry.ChunkID < scored[j].Entry.ChunkID
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (x *cosineIndex) DeleteByDocumentID(ctx context.Context, documentID string) error {
	for id, e := range x.entries {
		if e.DocumentID == documentID {
			delete(x.entries, id)
		}
	}
	return nil
}

func (x *cosineIndex) CountByDocumentID(ctx context.Context, documentID string) (int64, error) {
	var n int64
	for _, e := range x.entries {
		if e.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func seedIndex(t *testing.T, index *cosineIndex) {
	t.Helper()
	entries := []*entity.IndexEntry{
		{ChunkID: "doc#0000", DocumentID: "doc", Ordinal: 0, Content: "cats purr when content", Embedding: []float32{1, 0, 0}},
		{ChunkID: "doc#0001", DocumentID: "doc", Ordinal: 1, Content: "dogs bark at strangers", Embedding: []float32{0, 1, 0}},
		{ChunkID: "doc#0002", DocumentID: "doc", Ordinal: 2, Content: "fish swim in schools", Embedding: []float32{0, 0, 1}},
	}
	require.NoError(t, index.Upsert(context.Background(), entries))
}

func newTestChatService(llmProvider llm.LLMProvider, index contract.VectorIndexRepository, repo contract.ConversationRepository) IChatService {
	ragRetriever := retriever.New(
		llmProvider,
		&fakeEmbedder{},
		index,
		log.New(log.Writer(), "", 0),
		retriever.Config{Expansions: 3, TopK: 5, FinalK: 3},
	)
	builder := prompt.NewBuilder(constant.AnswerSystemPromptV1, 0, 0)
	return NewChatService(ragRetriever, llmProvider, repo, builder, nopLogger{})
}

func TestChatAnswersFromIndexAndRecordsHistory(t *testing.T) {
	index := newCosineIndex()
	seedIndex(t, index)
	repo := memory.NewConversationRepository(10)
	provider := &fakeLLM{expansion: `["why do cats purr"]`, answer: "they purr when content"}
	cs := newTestChatService(provider, index, repo)

	res, err := cs.Chat(context.Background(), &dto.ChatRequest{Prompt: "why do cats purr?", SessionId: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "they purr when content", res.Answer)
	assert.Equal(t, "s1", res.SessionId)

	// The exchange lands in history user-first.
	turns, err := repo.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, store.RoleUser, turns[0].Role)
	assert.Equal(t, "why do cats purr?", turns[0].Content)
	assert.Equal(t, store.RoleAssistant, turns[1].Role)
	assert.Equal(t, "they purr when content", turns[1].Content)

	// The model saw the retrieved passages in its system message.
	require.Len(t, provider.chats, 1)
	assert.Contains(t, provider.chats[0][0].Content, "cats purr when content")
}

func TestChatDefaultsSessionID(t *testing.T) {
	index := newCosineIndex()
	seedIndex(t, index)
	repo := memory.NewConversationRepository(10)
	cs := newTestChatService(&fakeLLM{answer: "ok"}, index, repo)

	res, err := cs.Chat(context.Background(), &dto.ChatRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, store.DefaultSessionID, res.SessionId)

	turns, err := repo.History(context.Background(), store.DefaultSessionID)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestChatRejectsEmptyPrompt(t *testing.T) {
	cs := newTestChatService(&fakeLLM{}, newCosineIndex(), memory.NewConversationRepository(10))

	_, err := cs.Chat(context.Background(), &dto.ChatRequest{Prompt: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestChatFailureLeavesHistoryUntouched(t *testing.T) {
	index := newCosineIndex()
	seedIndex(t, index)
	repo := memory.NewConversationRepository(10)
	provider := &fakeLLM{chatErr: apperrors.Wrapf(apperrors.ErrModelService, "model down")}
	cs := newTestChatService(provider, index, repo)

	_, err := cs.Chat(context.Background(), &dto.ChatRequest{Prompt: "hello", SessionId: "s1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrModelService)

	turns, err := repo.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestChatStillAnswersWhenExpansionFails(t *testing.T) {
	index := newCosineIndex()
	seedIndex(t, index)
	repo := memory.NewConversationRepository(10)
	provider := &failingExpansionLLM{answer: "fine without variants"}
	cs := newTestChatService(provider, index, repo)

	res, err := cs.Chat(context.Background(), &dto.ChatRequest{Prompt: "hello", SessionId: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "fine without variants", res.Answer)
}

func TestChatHistoryFlowsIntoFollowUps(t *testing.T) {
	index := newCosineIndex()
	seedIndex(t, index)
	repo := memory.NewConversationRepository(10)
	provider := &fakeLLM{answer: "answer"}
	cs := newTestChatService(provider, index, repo)

	for i := 0; i < 2; i++ {
		_, err := cs.Chat(context.Background(), &dto.ChatRequest{Prompt: fmt.Sprintf("question %d", i), SessionId: "s1"})
		require.NoError(t, err)
	}

	// Second call carries the first exchange between system and query.
	require.Len(t, provider.chats, 2)
	second := provider.chats[1]
	require.Len(t, second, 4) // system, user turn, assistant turn, query
	assert.Equal(t, "question 0", second[1].Content)
	assert.Equal(t, "answer", second[2].Content)
	assert.Equal(t, "question 1", second[3].Content)
}

// echoLLM answers with the query it was asked, after a delay wide enough
// for concurrent requests to overlap.
type echoLLM struct {
	delay time.Duration

	mu           sync.Mutex
	messageCount []int
}

func (e *echoLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	e.mu.Lock()
	e.messageCount = append(e.messageCount, len(history))
	e.mu.Unlock()

	time.Sleep(e.delay)
	return "re: " + history[len(history)-1].Content, nil
}

func (e *echoLLM) Generate(ctx context.Context, p string, options ...llm.Option) (string, error) {
	return "[]", nil
}

func TestChatSerializesSameSessionRequests(t *testing.T) {
	index := newCosineIndex()
	seedIndex(t, index)
	repo := memory.NewConversationRepository(10)
	provider := &echoLLM{delay: 30 * time.Millisecond}
	cs := newTestChatService(provider, index, repo)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := cs.Chat(context.Background(), &dto.ChatRequest{
				Prompt:    fmt.Sprintf("question %d", i),
				SessionId: "s1",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Exchanges land as complete user/assistant pairs in arrival order.
	turns, err := repo.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, store.RoleUser, turns[0].Role)
	assert.Equal(t, store.RoleAssistant, turns[1].Role)
	assert.Equal(t, store.RoleUser, turns[2].Role)
	assert.Equal(t, store.RoleAssistant, turns[3].Role)
	assert.Equal(t, "re: "+turns[0].Content, turns[1].Content)
	assert.Equal(t, "re: "+turns[2].Content, turns[3].Content)

	// The second request waited for the first, so its context window
	// already carried the first exchange (system + 2 turns + query).
	counts := append([]int(nil), provider.messageCount...)
	sort.Ints(counts)
	assert.Equal(t, []int{2, 4}, counts)
}

// failingExpansionLLM fails Generate (expansion) but answers Chat.
type failingExpansionLLM struct {
	answer string
}

func (f *failingExpansionLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.answer, nil
}

func (f *failingExpansionLLM) Generate(ctx context.Context, p string, options ...llm.Option) (string, error) {
	return "", errors.New("expansion model down")
}
