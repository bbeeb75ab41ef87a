package service

import (
	"context"
	"strings"
	"time"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/dto"
	"ragbot-be/internal/pkg/logger"
	"ragbot-be/internal/repository/contract"
	"ragbot-be/pkg/llm"
	"ragbot-be/pkg/rag/prompt"
	"ragbot-be/pkg/rag/retriever"
	"ragbot-be/pkg/store"

	"github.com/google/uuid"
)

// Answer chain states. Every request walks them in order; a failure at any
// step transitions to FAILED and aborts the chain.
const (
	chainReceived          = "RECEIVED"
	chainExpandingQuery    = "EXPANDING_QUERY"
	chainRetrieving        = "RETRIEVING"
	chainAssemblingContext = "ASSEMBLING_CONTEXT"
	chainGenerating        = "GENERATING"
	chainRecording         = "RECORDING"
	chainDone              = "DONE"
	chainFailed            = "FAILED"
)

type IChatService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	retriever        *retriever.Retriever
	llmProvider      llm.LLMProvider
	conversationRepo contract.ConversationRepository
	promptBuilder    *prompt.Builder
	logger           logger.ILogger

	// sessionLocks serializes requests on the same session so concurrent
	// requests cannot interleave a conversation.
	sessionLocks keyedMutex
}

func NewChatService(
	ragRetriever *retriever.Retriever,
	llmProvider llm.LLMProvider,
	conversationRepo contract.ConversationRepository,
	promptBuilder *prompt.Builder,
	log logger.ILogger,
) IChatService {
	return &chatService{
		retriever:        ragRetriever,
		llmProvider:      llmProvider,
		conversationRepo: conversationRepo,
		promptBuilder:    promptBuilder,
		logger:           log,
	}
}

func (cs *chatService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	requestID := uuid.NewString()

	query := strings.TrimSpace(request.Prompt)
	if query == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "prompt must not be empty")
	}

	sessionID := request.SessionId
	if sessionID == "" {
		sessionID = store.DefaultSessionID
	}

	cs.transition(requestID, sessionID, chainReceived, map[string]interface{}{
		"prompt_length": len([]rune(query)),
	})

	// Same-session requests run one at a time.
	lock := cs.sessionLocks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history, err := cs.conversationRepo.History(ctx, sessionID)
	if err != nil {
		return nil, cs.fail(requestID, sessionID, chainReceived, err)
	}

	// Expansion happens inside the retriever and degrades to the original
	// query on failure, so it can never fail the chain by itself.
	cs.transition(requestID, sessionID, chainExpandingQuery, nil)
	cs.transition(requestID, sessionID, chainRetrieving, nil)

	candidates, err := cs.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, cs.fail(requestID, sessionID, chainRetrieving, err)
	}

	cs.transition(requestID, sessionID, chainAssemblingContext, map[string]interface{}{
		"candidates": len(candidates),
		"top_scores": topScores(candidates, 3),
	})
	messages := cs.promptBuilder.Build(query, candidates, history)

	cs.transition(requestID, sessionID, chainGenerating, map[string]interface{}{
		"messages": len(messages),
	})
	started := time.Now()
	answer, err := cs.llmProvider.Chat(ctx, messages)
	if err != nil {
		return nil, cs.fail(requestID, sessionID, chainGenerating, err)
	}

	cs.transition(requestID, sessionID, chainRecording, map[string]interface{}{
		"generation_ms": time.Since(started).Milliseconds(),
	})
	// History records the exchange only after generation succeeded; a failed
	// request leaves the session exactly as it was.
	err = cs.conversationRepo.Append(ctx, sessionID,
		store.Turn{Role: store.RoleUser, Content: query, CreatedAt: time.Now()},
		store.Turn{Role: store.RoleAssistant, Content: answer, CreatedAt: time.Now()},
	)
	if err != nil {
		return nil, cs.fail(requestID, sessionID, chainRecording, err)
	}

	cs.transition(requestID, sessionID, chainDone, map[string]interface{}{
		"answer_length": len([]rune(answer)),
	})

	return &dto.ChatResponse{
		Answer:    answer,
		SessionId: sessionID,
	}, nil
}

func (cs *chatService) transition(requestID, sessionID, state string, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["request_id"] = requestID
	details["session_id"] = sessionID
	details["state"] = state
	cs.logger.Info("ChatService", "answer chain state", details)
}

func (cs *chatService) fail(requestID, sessionID, atState string, err error) error {
	cs.logger.Error("ChatService", "answer chain failed", map[string]interface{}{
		"request_id": requestID,
		"session_id": sessionID,
		"state":      chainFailed,
		"failed_at":  atState,
		"error":      err.Error(),
	})
	return err
}

func topScores(candidates []store.Candidate, n int) []float32 {
	if len(candidates) < n {
		n = len(candidates)
	}
	scores := make([]float32, 0, n)
	for _, c := range candidates[:n] {
		scores = append(scores, c.Score)
	}
	return scores
}
