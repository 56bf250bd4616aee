package app

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/cache"
	"docuchat/internal/model"
	"docuchat/internal/store"
)

func TestAnswerRequiresReadySession(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	_, err := env.qa.Answer(ctx, "s1", "what color is the sky?")
	require.ErrorIs(t, err, ErrNotReady)

	// no provider traffic before the session is ready
	assert.Zero(t, env.embedder.calls.Load())
	assert.Zero(t, env.completer.calls.Load())
}

func TestAnswerRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	_, err := env.qa.Answer(ctx, "s1", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.qa.Answer(ctx, "", "question")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnswerGroundedInDocument(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	env.mustIndex(t, "s1", "The sky is blue. Water is wet. Grass is green.")

	// the completer echoes its prompt, so the retrieved context must have
	// carried the relevant sentence
	result, err := env.qa.Answer(ctx, "s1", "what color is the sky?")
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "blue")
	assert.Positive(t, result.TokensUsed)
}

func TestAnswerAccountsTokens(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	env.mustIndex(t, "s1", "The sky is blue.")

	result, err := env.qa.Answer(ctx, "s1", "what color is the sky?")
	require.NoError(t, err)

	want := len(strings.Fields("what color is the sky?")) + len(strings.Fields(result.Answer))
	assert.Equal(t, want, result.TokensUsed)
	assert.Equal(t, want, result.TokenCount)

	count, err := env.sessions.Tokens(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, want, count)

	result2, err := env.qa.Answer(ctx, "s1", "is water wet?")
	require.NoError(t, err)
	assert.Equal(t, want+result2.TokensUsed, result2.TokenCount)
}

func TestAnswerPublishesChatLog(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	env.mustIndex(t, "s1", "The sky is blue.")

	result, err := env.qa.Answer(ctx, "s1", "what color is the sky?")
	require.NoError(t, err)

	require.Len(t, env.chatLog.entries, 1)
	entry := env.chatLog.entries[0]
	assert.Equal(t, "s1", entry.SessionID)
	assert.Equal(t, "what color is the sky?", entry.Question)
	assert.Equal(t, result.Answer, entry.Answer)
	assert.Equal(t, result.TokensUsed, entry.TokensUsed)
}

func TestAnswerReloadsIndexAfterCacheLoss(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	env.mustIndex(t, "s1", "The sky is blue.")
	env.indexCache.Invalidate("s1")

	result, err := env.qa.Answer(ctx, "s1", "what color is the sky?")
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "blue")

	_, ok := env.indexCache.Get("s1")
	assert.True(t, ok)
}

func TestAnswerMissingArtifact(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	env.mustIndex(t, "s1", "The sky is blue.")
	env.indexCache.Invalidate("s1")
	require.NoError(t, env.indexes.Delete(ctx, "s1"))

	_, err := env.qa.Answer(ctx, "s1", "what color is the sky?")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTokenOverflowResetsSession(t *testing.T) {
	env := newTestEnv(t, 5)
	ctx := context.Background()

	env.mustIndex(t, "s1", "The sky is blue.")

	result, err := env.qa.Answer(ctx, "s1", "what color is the sky above us today?")
	require.NoError(t, err)
	assert.True(t, result.Reset)
	assert.Greater(t, result.TokenCount, 5)

	// the whole session is gone: status, artifact, token counter
	rec, err := env.sessions.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoSession, rec.Status)

	_, err = env.indexes.Load(ctx, "s1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	count, err := env.sessions.Tokens(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTokenLimitPrecheck(t *testing.T) {
	env := newTestEnv(t, 5)
	ctx := context.Background()

	env.mustIndex(t, "s1", "The sky is blue.")
	_, err := env.sessions.AddTokens(ctx, "s1", 5)
	require.NoError(t, err)

	_, err = env.qa.Answer(ctx, "s1", "what color is the sky?")
	require.ErrorIs(t, err, ErrTokenLimit)

	// the precheck also wipes the session
	rec, err := env.sessions.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoSession, rec.Status)
	assert.Zero(t, env.completer.calls.Load())
}

// pausingArtifactStore parks the first artifact read after Arm until Release,
// holding the already-read bytes across whatever the test does in between.
type pausingArtifactStore struct {
	store.BlobStore
	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func newPausingArtifactStore(inner store.BlobStore) *pausingArtifactStore {
	return &pausingArtifactStore{
		BlobStore: inner,
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (p *pausingArtifactStore) Arm() {
	p.mu.Lock()
	p.armed = true
	p.mu.Unlock()
}

func (p *pausingArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := p.BlobStore.Get(ctx, key)
	if strings.HasSuffix(key, "index.json") {
		p.mu.Lock()
		armed := p.armed
		p.armed = false
		p.mu.Unlock()
		if armed {
			p.entered <- struct{}{}
			<-p.release
		}
	}
	return data, err
}

func TestCacheMissDoesNotResurrectReplacedIndex(t *testing.T) {
	ctx := context.Background()
	artifacts := newPausingArtifactStore(store.NewMemoryBlobStore())
	documents := store.NewDocumentStore(store.NewMemoryBlobStore())
	indexes := store.NewIndexStore(artifacts)
	statuses := store.NewStatusStore(artifacts)
	indexCache := cache.NewIndexCache()
	embedder := &hashEmbedder{dim: 8}
	sessions := NewSessionService(statuses, documents, indexes, artifacts, indexCache, 10000)
	indexing := NewIndexingService(documents, indexes, statuses, indexCache, textExtractor{}, embedder, IndexingConfig{
		ChunkSize:    40,
		ChunkOverlap: 8,
	})
	qa := NewQAService(sessions, indexCache, indexes, embedder, &echoCompleter{}, nil, 4)

	_, err := indexing.Index(ctx, "s1", "a.pdf", []byte(strings.Repeat("alpha document about astronomy. ", 10)))
	require.NoError(t, err)

	// simulate a restart: the next chat must reload from the artifact store
	indexCache.Invalidate("s1")
	artifacts.Arm()

	done := make(chan error, 1)
	go func() {
		_, answerErr := qa.Answer(ctx, "s1", "what is the manuscript about?")
		done <- answerErr
	}()

	// the chat request now holds the old artifact's bytes; replace the
	// document underneath it
	<-artifacts.entered
	_, err = indexing.Index(ctx, "s1", "b.pdf", []byte(strings.Repeat("beta document about botany. ", 10)))
	require.NoError(t, err)

	close(artifacts.release)
	require.NoError(t, <-done)

	// the cache must still hold the replacement, not the resurrected reload
	cached, ok := indexCache.Get("s1")
	require.True(t, ok)
	query, err := embedder.Embed(ctx, "document")
	require.NoError(t, err)
	hits, err := cached.Search(query, cached.Len())
	require.NoError(t, err)
	for _, hit := range hits {
		assert.NotContains(t, hit.Chunk.Text, "alpha")
	}
}

func TestManualResetClearsSession(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	env.mustIndex(t, "s1", "The sky is blue.")
	_, err := env.sessions.AddTokens(ctx, "s1", 42)
	require.NoError(t, err)

	require.NoError(t, env.sessions.Reset(ctx, "s1"))

	rec, err := env.sessions.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoSession, rec.Status)

	count, err := env.sessions.Tokens(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, ok := env.indexCache.Get("s1")
	assert.False(t, ok)
}
