package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/model"
	"docuchat/internal/splitter"
	"docuchat/internal/vectorindex"
)

func TestMemoryBlobStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()

	_, err := blobs.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, blobs.Put(ctx, "a/x", []byte("one")))
	require.NoError(t, blobs.Put(ctx, "a/y", []byte("two")))
	require.NoError(t, blobs.Put(ctx, "b/x", []byte("three")))

	data, err := blobs.Get(ctx, "a/x")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	// delete is idempotent
	require.NoError(t, blobs.Delete(ctx, "a/x"))
	require.NoError(t, blobs.Delete(ctx, "a/x"))

	require.NoError(t, blobs.DeletePrefix(ctx, "a/"))
	_, err = blobs.Get(ctx, "a/y")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = blobs.Get(ctx, "b/x")
	assert.NoError(t, err, "other prefixes must survive")
}

func TestMemoryBlobStoreIncrement(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()

	// absent key counts as zero
	total, err := blobs.Increment(ctx, "counter", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	total, err = blobs.Increment(ctx, "counter", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	// stored form is readable as a decimal string
	raw, err := blobs.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, []byte("8"), raw)

	require.NoError(t, blobs.Put(ctx, "garbage", []byte("not a number")))
	_, err = blobs.Increment(ctx, "garbage", 1)
	assert.Error(t, err)
}

func testIndex(t *testing.T, texts ...string) *vectorindex.Index {
	t.Helper()
	chunks := make([]splitter.Chunk, len(texts))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		chunks[i] = splitter.Chunk{Seq: i, Text: text}
		vectors[i] = []float32{float32(i), 1}
	}
	ix, err := vectorindex.Build(chunks, vectors)
	require.NoError(t, err)
	return ix
}

func TestIndexStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	indexes := NewIndexStore(NewMemoryBlobStore())

	_, err := indexes.Load(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)

	ix := testIndex(t, "alpha", "beta", "gamma")
	require.NoError(t, indexes.Save(ctx, "sid", ix))

	loaded, err := indexes.Load(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, ix.Len(), loaded.Len())

	// identical chunk order and text after reload
	want, err := ix.Search([]float32{1, 1}, 3)
	require.NoError(t, err)
	got, err := loaded.Search([]float32{1, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, indexes.Delete(ctx, "sid"))
	require.NoError(t, indexes.Delete(ctx, "sid"), "delete must be idempotent")
	_, err = indexes.Load(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIndexStoreSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	indexes := NewIndexStore(NewMemoryBlobStore())

	require.NoError(t, indexes.Save(ctx, "one", testIndex(t, "first")))
	require.NoError(t, indexes.Save(ctx, "two", testIndex(t, "second", "third")))

	one, err := indexes.Load(ctx, "one")
	require.NoError(t, err)
	two, err := indexes.Load(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())
}

func TestDocumentStoreKeys(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()
	documents := NewDocumentStore(blobs)

	key, err := documents.Put(ctx, "sid", "../weird name!.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Contains(t, key, "sid/")
	assert.NotContains(t, key, "..")
	assert.NotContains(t, key, " ")

	data, err := documents.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)

	require.NoError(t, documents.DeleteSession(ctx, "sid"))
	_, err = documents.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusStoreTransitions(t *testing.T) {
	ctx := context.Background()
	statuses := NewStatusStore(NewMemoryBlobStore())

	rec, err := statuses.Read(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoSession, rec.Status)

	// ready is only reachable through indexing
	err = statuses.Write(ctx, "sid", model.StatusRecord{Status: model.StatusReady})
	assert.ErrorIs(t, err, ErrIllegalTransition)

	require.NoError(t, statuses.Write(ctx, "sid", model.StatusRecord{Status: model.StatusUploaded, Filename: "doc.pdf"}))
	require.NoError(t, statuses.Write(ctx, "sid", model.StatusRecord{Status: model.StatusIndexing}))

	// skipping back to indexing without a fresh upload is illegal
	err = statuses.Write(ctx, "sid", model.StatusRecord{Status: model.StatusIndexing})
	assert.ErrorIs(t, err, ErrIllegalTransition)

	require.NoError(t, statuses.Write(ctx, "sid", model.StatusRecord{Status: model.StatusReady, PDFKey: "sid/doc.pdf"}))

	rec, err = statuses.Read(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, rec.Status)
	assert.Equal(t, "sid/doc.pdf", rec.PDFKey)
	assert.NotZero(t, rec.TS)

	// a re-upload restarts the machine
	require.NoError(t, statuses.Write(ctx, "sid", model.StatusRecord{Status: model.StatusUploaded}))

	require.NoError(t, statuses.Delete(ctx, "sid"))
	rec, err = statuses.Read(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoSession, rec.Status)
}
