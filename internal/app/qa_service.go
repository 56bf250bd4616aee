package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"docuchat/internal/ai"
	"docuchat/internal/cache"
	"docuchat/internal/model"
	"docuchat/internal/store"
	"docuchat/internal/vectorindex"
)

const qaSystemPrompt = "You answer ONLY from the provided context. " +
	"If the exact answer is not stated, use related evidence from the context to infer the best possible answer. " +
	"Only say there is not enough evidence if nothing relevant appears in the context. " +
	"Be direct and cite terms from the document when useful."

// ChatLogPublisher records an answered question; failures must not fail the
// chat request.
type ChatLogPublisher interface {
	Publish(ctx context.Context, entry model.ChatLog) error
}

// QAService answers questions grounded in the session's indexed document.
type QAService struct {
	sessions   *SessionService
	indexCache *cache.IndexCache
	indexes    *store.IndexStore
	embedder   Embedder
	completer  Completer
	chatLog    ChatLogPublisher
	topK       int
}

// AnswerResult is the outcome of one chat turn.
type AnswerResult struct {
	Answer     string `json:"answer"`
	TokensUsed int    `json:"tokens_used"`
	TokenCount int    `json:"token_count"`
	// Reset reports that answering this question exhausted the token
	// budget and the session was wiped.
	Reset bool `json:"reset,omitempty"`
}

func NewQAService(
	sessions *SessionService,
	indexCache *cache.IndexCache,
	indexes *store.IndexStore,
	embedder Embedder,
	completer Completer,
	chatLog ChatLogPublisher,
	topK int,
) *QAService {
	if topK <= 0 {
		topK = 4
	}
	return &QAService{
		sessions:   sessions,
		indexCache: indexCache,
		indexes:    indexes,
		embedder:   embedder,
		completer:  completer,
		chatLog:    chatLog,
		topK:       topK,
	}
}

// Answer embeds the question, retrieves the top-k chunks from the session's
// index and asks the completion model to answer from that context only.
func (s *QAService) Answer(ctx context.Context, sessionID, question string) (*AnswerResult, error) {
	question = strings.TrimSpace(question)
	if sessionID == "" || question == "" {
		return nil, ErrInvalidInput
	}

	rec, err := s.sessions.Status(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.StatusReady {
		return nil, fmt.Errorf("%w: status is %s", ErrNotReady, rec.Status)
	}

	count, err := s.sessions.Tokens(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if count >= s.sessions.TokenLimit() {
		if err := s.sessions.Reset(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, ErrTokenLimit
	}

	ix, err := s.index(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	hits, err := ix.Search(queryVec, s.topK)
	if err != nil {
		return nil, err
	}

	answer, err := s.completer.Complete(ctx, s.buildMessages(question, hits))
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)

	tokens := len(strings.Fields(question)) + len(strings.Fields(answer))
	total, err := s.sessions.AddTokens(ctx, sessionID, tokens)
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{Answer: answer, TokensUsed: tokens, TokenCount: total}
	if total > s.sessions.TokenLimit() {
		if err := s.sessions.Reset(ctx, sessionID); err != nil {
			return nil, err
		}
		result.Reset = true
	}

	if s.chatLog != nil {
		if err := s.chatLog.Publish(ctx, model.ChatLog{
			SessionID:  sessionID,
			Question:   question,
			Answer:     answer,
			TokensUsed: tokens,
		}); err != nil {
			log.Printf("publish chat log failed: %v", err)
		}
	}
	return result, nil
}

// index returns the session's cached index or reloads it from the artifact
// store, e.g. after a process restart.
func (s *QAService) index(ctx context.Context, sessionID string) (*vectorindex.Index, error) {
	if ix, ok := s.indexCache.Get(sessionID); ok {
		return ix, nil
	}
	gen := s.indexCache.Generation(sessionID)
	ix, err := s.indexes.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// a re-upload can replace the artifact while this load is in flight;
	// the reload is only cached when no newer index landed in between
	s.indexCache.PutIfUnchanged(sessionID, gen, ix)
	return ix, nil
}

func (s *QAService) buildMessages(question string, hits []vectorindex.Result) []ai.ChatMessage {
	var contextBlock strings.Builder
	for _, hit := range hits {
		contextBlock.WriteString("\n---\n")
		contextBlock.WriteString(hit.Chunk.Text)
	}
	contextBlock.WriteString("\n---")

	return []ai.ChatMessage{
		{Role: "system", Content: qaSystemPrompt},
		{Role: "user", Content: "Context:" + contextBlock.String() + "\n\nQuestion: " + question + "\n\nAnswer:"},
	}
}
