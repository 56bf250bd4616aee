package app

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"docuchat/internal/ai"
	"docuchat/internal/cache"
	"docuchat/internal/model"
	"docuchat/internal/store"
)

// textExtractor treats the uploaded bytes as plain text.
type textExtractor struct {
	err error
}

func (e textExtractor) Extract(data []byte) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return string(data), nil
}

// hashEmbedder produces deterministic vectors from text content.
type hashEmbedder struct {
	dim   int
	calls atomic.Int32
	err   error
}

func (e *hashEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dim)
	for i, r := range text {
		v[i%e.dim] += float32(r % 31)
	}
	return v
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

// echoCompleter answers with the user prompt it was given, so tests can
// observe exactly which context chunks were retrieved.
type echoCompleter struct {
	calls atomic.Int32
	err   error
}

func (c *echoCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	return messages[len(messages)-1].Content, nil
}

type memoryChatLog struct {
	entries []model.ChatLog
}

func (m *memoryChatLog) Publish(_ context.Context, entry model.ChatLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

type testEnv struct {
	documents  *store.DocumentStore
	indexes    *store.IndexStore
	statuses   *store.StatusStore
	artifacts  store.BlobStore
	indexCache *cache.IndexCache
	extractor  textExtractor
	embedder   *hashEmbedder
	completer  *echoCompleter
	chatLog    *memoryChatLog
	sessions   *SessionService
	indexing   *IndexingService
	qa         *QAService
}

func newTestEnv(t *testing.T, tokenLimit int) *testEnv {
	t.Helper()
	env := &testEnv{
		artifacts:  store.NewMemoryBlobStore(),
		indexCache: cache.NewIndexCache(),
		embedder:   &hashEmbedder{dim: 8},
		completer:  &echoCompleter{},
		chatLog:    &memoryChatLog{},
	}
	env.documents = store.NewDocumentStore(store.NewMemoryBlobStore())
	env.indexes = store.NewIndexStore(env.artifacts)
	env.statuses = store.NewStatusStore(env.artifacts)
	env.sessions = NewSessionService(env.statuses, env.documents, env.indexes, env.artifacts, env.indexCache, tokenLimit)
	env.indexing = NewIndexingService(env.documents, env.indexes, env.statuses, env.indexCache, env.extractor, env.embedder, IndexingConfig{
		ChunkSize:    40,
		ChunkOverlap: 8,
	})
	env.qa = NewQAService(env.sessions, env.indexCache, env.indexes, env.embedder, env.completer, env.chatLog, 4)
	return env
}

func (env *testEnv) mustIndex(t *testing.T, sid, text string) *IndexResult {
	t.Helper()
	result, err := env.indexing.Index(context.Background(), sid, "doc.pdf", []byte(text))
	require.NoError(t, err)
	return result
}
