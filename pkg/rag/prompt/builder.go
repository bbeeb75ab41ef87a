package prompt

import (
	"fmt"
	"strings"

	"ragbot-be/pkg/llm"
	"ragbot-be/pkg/store"
)

// Builder assembles the bounded context window handed to the language
// model: system instructions, ranked retrieval passages, then conversation
// history, then the current question.
type Builder struct {
	SystemPrompt string
	// CandidateBudget bounds the total rune count of included passages.
	// Truncation drops the least-relevant candidates first; the top-ranked
	// candidate is always kept.
	CandidateBudget int
	// HistoryBudget bounds the total rune count of included history turns.
	// Truncation drops the oldest turns first; the most recent turn is
	// always kept.
	HistoryBudget int
}

func NewBuilder(systemPrompt string, candidateBudget, historyBudget int) *Builder {
	return &Builder{
		SystemPrompt:    systemPrompt,
		CandidateBudget: candidateBudget,
		HistoryBudget:   historyBudget,
	}
}

// Build produces the message sequence for the chat call.
func (b *Builder) Build(query string, candidates []store.Candidate, history []store.Turn) []llm.Message {
	var system strings.Builder
	system.WriteString(b.SystemPrompt)
	system.WriteString("\n\n")
	b.writeReferencePassages(&system, b.fitCandidates(candidates))

	messages := []llm.Message{{Role: store.RoleSystem, Content: system.String()}}

	for _, turn := range b.fitHistory(history) {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	messages = append(messages, llm.Message{Role: store.RoleUser, Content: query})
	return messages
}

func (b *Builder) writeReferencePassages(sb *strings.Builder, candidates []store.Candidate) {
	sb.WriteString("<reference_passages>\n")
	if len(candidates) == 0 {
		sb.WriteString("(no relevant passages found)\n")
	}
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, c.Content))
	}
	sb.WriteString("</reference_passages>")
}

// fitCandidates keeps candidates in rank order until the budget is spent.
func (b *Builder) fitCandidates(candidates []store.Candidate) []store.Candidate {
	if b.CandidateBudget <= 0 {
		return candidates
	}

	var kept []store.Candidate
	used := 0
	for i, c := range candidates {
		size := len([]rune(c.Content))
		if i > 0 && used+size > b.CandidateBudget {
			break
		}
		kept = append(kept, c)
		used += size
	}
	return kept
}

// fitHistory walks backwards from the newest turn until the budget is
// spent, then restores oldest-first order.
func (b *Builder) fitHistory(history []store.Turn) []store.Turn {
	if b.HistoryBudget <= 0 || len(history) == 0 {
		return history
	}

	var kept []store.Turn
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		size := len([]rune(history[i].Content))
		if len(kept) > 0 && used+size > b.HistoryBudget {
			break
		}
		kept = append(kept, history[i])
		used += size
	}

	// Reverse back to oldest first.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}
